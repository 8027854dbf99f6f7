package battle

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

const MaxPlayers = 2

type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// ParseDifficulty matches s case-insensitively against the known levels.
func ParseDifficulty(s string) (Difficulty, bool) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, true
		}
	}
	return "", false
}

// RoundConfig is negotiated by the host during setup. Empty means unset.
type RoundConfig struct {
	Difficulty Difficulty `json:"difficulty"`
	Language   string     `json:"language"`
}

func (c RoundConfig) Complete() bool {
	return c.Difficulty != "" && c.Language != ""
}

type Vote string

const (
	VoteYes Vote = "yes"
	VoteNo  Vote = "no"
)

func ParseVote(s string) (Vote, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return VoteYes, true
	case "no":
		return VoteNo, true
	}
	return "", false
}

type Player struct {
	UserID    int64
	Name      string
	JoinedAt  time.Time
	Confirmed bool

	handle Handle
}

func (p *Player) Connected() bool { return p.handle != nil }

func (p *Player) send(msg Message) {
	if p.handle != nil {
		p.handle.Send(msg)
	}
}

type JoinRequest struct {
	UserID      int64
	Name        string
	RequestedAt time.Time

	handle Handle
}

type Submission struct {
	Code        string
	SubmittedAt time.Time
	TimeTaken   time.Duration
}

// Session is one room. It is only touched from the engine goroutine.
type Session struct {
	Code      string
	HostID    int64
	State     State
	Config    RoundConfig
	Problem   *Problem
	Fallback  bool
	StartTime time.Time
	Round     int
	Result    *Result
	CreatedAt time.Time

	Submissions map[int64]Submission
	Votes       map[int64]Vote
	Pending     *JoinRequest

	players []*Player // join order, host first

	graceSeq      int
	destroyTimer  clockwork.Timer
	deadlineTimer clockwork.Timer
}

func newSession(code string, host *Player, now time.Time) *Session {
	return &Session{
		Code:        code,
		HostID:      host.UserID,
		State:       StateWaiting,
		Round:       1,
		CreatedAt:   now,
		Submissions: make(map[int64]Submission),
		Votes:       make(map[int64]Vote),
		players:     []*Player{host},
	}
}

func (s *Session) Player(userID int64) *Player {
	for _, p := range s.players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (s *Session) Players() []*Player { return s.players }

func (s *Session) Host() *Player { return s.Player(s.HostID) }

func (s *Session) Full() bool { return len(s.players) >= MaxPlayers }

func (s *Session) addPlayer(p *Player) bool {
	if s.Full() || s.Player(p.UserID) != nil {
		return false
	}
	s.players = append(s.players, p)
	return true
}

func (s *Session) opponent(userID int64) *Player {
	for _, p := range s.players {
		if p.UserID != userID {
			return p
		}
	}
	return nil
}

func (s *Session) allConfirmed() bool {
	if !s.Full() {
		return false
	}
	for _, p := range s.players {
		if !p.Confirmed {
			return false
		}
	}
	return true
}

func (s *Session) liveCount() int {
	n := 0
	for _, p := range s.players {
		if p.Connected() {
			n++
		}
	}
	return n
}

func (s *Session) playerIDs() []int64 {
	ids := make([]int64, 0, len(s.players))
	for _, p := range s.players {
		ids = append(ids, p.UserID)
	}
	return ids
}

func (s *Session) roster() []PlayerInfo {
	out := make([]PlayerInfo, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, PlayerInfo{
			ID:        p.UserID,
			Name:      p.Name,
			IsHost:    p.UserID == s.HostID,
			Connected: p.Connected(),
		})
	}
	return out
}

func (s *Session) broadcast(msg Message) {
	for _, p := range s.players {
		p.send(msg)
	}
}

func (s *Session) broadcastExcept(userID int64, msg Message) {
	for _, p := range s.players {
		if p.UserID != userID {
			p.send(msg)
		}
	}
}

// transition moves the session along the state table or returns ErrIllegalTransition.
func (s *Session) transition(to State) error {
	if err := checkTransition(s.State, to); err != nil {
		return err
	}
	from := s.State
	s.State = to
	if !to.holdsSubmissions() {
		clear(s.Submissions)
	}
	transitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	return nil
}

// resetRound clears everything negotiated or produced in the finished round.
func (s *Session) resetRound() {
	clear(s.Submissions)
	clear(s.Votes)
	s.Problem = nil
	s.Fallback = false
	s.Config = RoundConfig{}
	s.StartTime = time.Time{}
	s.Result = nil
	s.Round++
}

func (s *Session) stopTimers() {
	if s.destroyTimer != nil {
		s.destroyTimer.Stop()
		s.destroyTimer = nil
	}
	if s.deadlineTimer != nil {
		s.deadlineTimer.Stop()
		s.deadlineTimer = nil
	}
}

// view builds the reconnect snapshot for userID.
func (s *Session) view(userID int64, now time.Time, roundDuration time.Duration) RoomView {
	v := RoomView{
		RoomCode: s.Code,
		State:    s.State,
		IsHost:   userID == s.HostID,
		Players:  s.roster(),
		Config:   s.Config,
		Round:    s.Round,
	}
	if s.State == StateBattle || s.State == StateJudging {
		v.Problem = s.Problem
		started := s.StartTime
		v.StartedAt = &started
		v.Duration = int(roundDuration / time.Second)
		if left := roundDuration - now.Sub(s.StartTime); left > 0 {
			v.Remaining = int(left / time.Second)
		}
		_, v.Submitted = s.Submissions[userID]
		if opp := s.opponent(userID); opp != nil {
			_, v.OpponentSubmitted = s.Submissions[opp.UserID]
		}
	}
	if s.State == StateResult {
		v.Result = s.Result
	}
	if v.IsHost && s.Pending != nil {
		v.PendingJoin = &PlayerInfo{ID: s.Pending.UserID, Name: s.Pending.Name}
	}
	return v
}

func (s *Session) summary() RoomSummary {
	sum := RoomSummary{
		RoomCode: s.Code,
		State:    s.State,
		Players:  len(s.players),
		Joinable: !s.Full() && s.Pending == nil,
	}
	if h := s.Host(); h != nil {
		sum.Host = h.Name
	}
	return sum
}
