package battle

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"
)

const (
	codeAlphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultCodeLength  = 4
	maxCodeGenAttempts = 64
)

var ErrCodeSpaceExhausted = errors.New("could not allocate a unique room code")

// Registry maps room codes to sessions and tracks which rooms each user
// touches. It is not safe for concurrent use; the engine goroutine owns it.
type Registry struct {
	sessions map[string]*Session
	byUser   map[int64]map[string]struct{}
	codeLen  int
	newCode  func(n int) (string, error)
}

func NewRegistry(codeLen int) *Registry {
	if codeLen <= 0 {
		codeLen = defaultCodeLength
	}
	return &Registry{
		sessions: make(map[string]*Session),
		byUser:   make(map[int64]map[string]struct{}),
		codeLen:  codeLen,
		newCode:  randomCode,
	}
}

// Create allocates a fresh code and a waiting session with host as sole player.
func (r *Registry) Create(host *Player, now time.Time) (*Session, error) {
	for i := 0; i < maxCodeGenAttempts; i++ {
		code, err := r.newCode(r.codeLen)
		if err != nil {
			return nil, err
		}
		if _, taken := r.sessions[code]; taken {
			continue
		}
		s := newSession(code, host, now)
		r.sessions[code] = s
		r.track(host.UserID, code)
		return s, nil
	}
	return nil, ErrCodeSpaceExhausted
}

func (r *Registry) Get(code string) (*Session, bool) {
	s, ok := r.sessions[NormalizeCode(code)]
	return s, ok
}

// Destroy removes the session and forgets every membership pointing at it.
func (r *Registry) Destroy(code string) {
	code = NormalizeCode(code)
	s, ok := r.sessions[code]
	if !ok {
		return
	}
	for _, p := range s.players {
		r.untrack(p.UserID, code)
	}
	if s.Pending != nil {
		r.untrack(s.Pending.UserID, code)
	}
	delete(r.sessions, code)
}

func (r *Registry) Len() int { return len(r.sessions) }

// CodesFor lists the rooms userID is a player or pending requester in.
func (r *Registry) CodesFor(userID int64) []string {
	codes := make([]string, 0, len(r.byUser[userID]))
	for c := range r.byUser[userID] {
		codes = append(codes, c)
	}
	return codes
}

func (r *Registry) track(userID int64, code string) {
	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[string]struct{})
		r.byUser[userID] = set
	}
	set[code] = struct{}{}
}

func (r *Registry) untrack(userID int64, code string) {
	set := r.byUser[userID]
	delete(set, code)
	if len(set) == 0 {
		delete(r.byUser, userID)
	}
}

// NormalizeCode trims and upper-cases user-typed room codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func randomCode(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[idx.Int64()]
	}
	return string(b), nil
}
