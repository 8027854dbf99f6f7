package battle

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	inboxSize    = 256
	awardTimeout = 10 * time.Second
)

var ErrEngineStopped = errors.New("battle engine stopped")

type Options struct {
	RoundDuration     time.Duration
	GenerationTimeout time.Duration
	JudgeTimeout      time.Duration
	ReconnectGrace    time.Duration
	EnforceDeadline   bool
	CodeLength        int
}

func (o *Options) setDefaults() {
	if o.RoundDuration <= 0 {
		o.RoundDuration = 15 * time.Minute
	}
	if o.GenerationTimeout <= 0 {
		o.GenerationTimeout = 45 * time.Second
	}
	if o.JudgeTimeout <= 0 {
		o.JudgeTimeout = 45 * time.Second
	}
	if o.CodeLength <= 0 {
		o.CodeLength = defaultCodeLength
	}
}

// Deps are the engine's collaborators. Nil generators make every round use
// the fallback problem and an unresolved verdict; a nil Rewards skips awards.
type Deps struct {
	Problems TextGenerator
	Judge    TextGenerator
	Rewards  RewardAwarder
	Clock    clockwork.Clock
	Log      *slog.Logger
}

// Engine owns every battle session. All mutations happen on the Run
// goroutine, one event at a time; model calls and awards run beside it and
// report back through the inbox.
type Engine struct {
	opts     Options
	registry *Registry
	problems *ProblemGenerator
	judge    *Judge
	rewards  RewardAwarder
	clock    clockwork.Clock
	log      *slog.Logger

	inbox   chan event
	stopped chan struct{}
	runCtx  context.Context
	bg      sync.WaitGroup
	active  atomic.Int64
}

func NewEngine(opts Options, deps Deps) *Engine {
	opts.setDefaults()
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Engine{
		opts:     opts,
		registry: NewRegistry(opts.CodeLength),
		problems: NewProblemGenerator(deps.Problems),
		judge:    NewJudge(deps.Judge),
		rewards:  deps.Rewards,
		clock:    deps.Clock,
		log:      deps.Log,
		inbox:    make(chan event, inboxSize),
		stopped:  make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled, then waits for in-flight
// background work to finish.
func (e *Engine) Run(ctx context.Context) error {
	e.runCtx = ctx
	defer func() {
		close(e.stopped)
		for _, code := range e.codes() {
			e.destroy(code, "shutdown")
		}
		e.bg.Wait()
	}()
	e.log.Info("battle engine started", "round_duration", e.opts.RoundDuration, "enforce_deadline", e.opts.EnforceDeadline)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("battle engine stopping", "rooms", e.registry.Len())
			return nil
		case ev := <-e.inbox:
			e.apply(ev)
		}
	}
}

func (e *Engine) apply(ev event) {
	switch ev := ev.(type) {
	case createEvent:
		e.handleCreate(ev)
	case rejoinEvent:
		e.handleRejoin(ev.actor, ev.code)
	case joinRequestEvent:
		e.handleJoinRequest(ev)
	case joinDecisionEvent:
		e.handleJoinDecision(ev)
	case confirmJoinEvent:
		e.handleConfirmJoin(ev)
	case configEvent:
		e.handleConfig(ev)
	case submitEvent:
		e.handleSubmit(ev)
	case voteEvent:
		e.handleVote(ev)
	case chatEvent:
		e.handleChat(ev)
	case disconnectEvent:
		e.handleDisconnect(ev)
	case generationDone:
		e.handleGenerationDone(ev)
	case judgingDone:
		e.handleJudgingDone(ev)
	case deadlineEvent:
		e.handleDeadline(ev)
	case destroyDueEvent:
		e.handleDestroyDue(ev)
	case summaryQuery:
		var out *RoomSummary
		if s, ok := e.registry.Get(ev.code); ok {
			sum := s.summary()
			out = &sum
		}
		ev.reply <- out
	}
}

// post hands an event to the loop. It reports false once the engine stopped.
func (e *Engine) post(ev event) bool {
	select {
	case e.inbox <- ev:
		return true
	case <-e.stopped:
		return false
	}
}

// goBackground runs fn beside the loop; Run waits for it on shutdown.
func (e *Engine) goBackground(fn func(ctx context.Context)) {
	ctx := e.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		fn(ctx)
	}()
}

// ActiveRooms is safe to call from any goroutine.
func (e *Engine) ActiveRooms() int {
	return int(e.active.Load())
}

func (e *Engine) roomsChanged() {
	n := e.registry.Len()
	e.active.Store(int64(n))
	roomsActive.Set(float64(n))
}

func (e *Engine) codes() []string {
	out := make([]string, 0, e.registry.Len())
	for code := range e.registry.sessions {
		out = append(out, code)
	}
	return out
}

func (e *Engine) destroy(code, reason string) {
	s, ok := e.registry.Get(code)
	if !ok {
		return
	}
	s.stopTimers()
	e.registry.Destroy(code)
	e.roomsChanged()
	e.log.Info("battle room destroyed", "room", code, "reason", reason, "round", s.Round)
}

func (e *Engine) sendError(h Handle, err *Error) {
	send(h, errorMessage(err))
}

// lookupMember resolves an in-room event. Unknown rooms are ignored; known
// rooms reject non-members with an error to the caller.
func (e *Engine) lookupMember(code string, a Actor) (*Session, *Player, bool) {
	s, ok := e.registry.Get(code)
	if !ok {
		return nil, nil, false
	}
	p := s.Player(a.UserID)
	if p == nil {
		e.sendError(a.Handle, ErrNotAMember)
		return nil, nil, false
	}
	return s, p, true
}

// Create opens a room hosted by a and returns its code.
func (e *Engine) Create(ctx context.Context, a Actor) (string, error) {
	reply := make(chan createResult, 1)
	if !e.post(createEvent{actor: a, reply: reply}) {
		return "", ErrEngineStopped
	}
	select {
	case r := <-reply:
		return r.code, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (e *Engine) Rejoin(a Actor, code string) {
	e.post(rejoinEvent{actor: a, code: code})
}

func (e *Engine) RequestJoin(a Actor, code string) {
	e.post(joinRequestEvent{actor: a, code: code})
}

func (e *Engine) DecideJoin(a Actor, code string, accept bool) {
	e.post(joinDecisionEvent{actor: a, code: code, accept: accept})
}

func (e *Engine) ConfirmJoin(a Actor, code string) {
	e.post(confirmJoinEvent{actor: a, code: code})
}

// ConfigUpdate carries the fields a host set in one message; nil means untouched.
type ConfigUpdate struct {
	Difficulty *string
	Language   *string
}

func (e *Engine) UpdateConfig(a Actor, code string, upd ConfigUpdate) {
	e.post(configEvent{actor: a, code: code, update: upd})
}

func (e *Engine) Submit(a Actor, code, source string) {
	e.post(submitEvent{actor: a, code: code, source: source})
}

func (e *Engine) Vote(a Actor, code, vote string) {
	e.post(voteEvent{actor: a, code: code, vote: vote})
}

func (e *Engine) Chat(a Actor, code, text string) {
	e.post(chatEvent{actor: a, code: code, text: text})
}

// Disconnect reports that connID closed. It only matters if connID is still
// the handle the engine holds for userID.
func (e *Engine) Disconnect(userID int64, connID string) {
	e.post(disconnectEvent{userID: userID, connID: connID})
}

// Summary returns the public view of a room, if it exists.
func (e *Engine) Summary(ctx context.Context, code string) (RoomSummary, bool) {
	reply := make(chan *RoomSummary, 1)
	if !e.post(summaryQuery{code: code, reply: reply}) {
		return RoomSummary{}, false
	}
	select {
	case s := <-reply:
		if s == nil {
			return RoomSummary{}, false
		}
		return *s, true
	case <-ctx.Done():
		return RoomSummary{}, false
	}
}
