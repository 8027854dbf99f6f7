package battle

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of a session. The set is closed; every
// move between states goes through transitionTable.
type State string

const (
	StateWaiting    State = "waiting"
	StateSetup      State = "setup"
	StateGenerating State = "generating"
	StateBattle     State = "battle"
	StateJudging    State = "judging"
	StateResult     State = "result"
)

var ErrIllegalTransition = errors.New("illegal state transition")

var transitionTable = map[State][]State{
	StateWaiting:    {StateSetup},
	StateSetup:      {StateGenerating},
	StateGenerating: {StateBattle},
	StateBattle:     {StateJudging},
	StateJudging:    {StateResult},
	StateResult:     {StateSetup},
}

// CanTransition reports whether to is reachable from s in one step.
func (s State) CanTransition(to State) bool {
	for _, next := range transitionTable[s] {
		if next == to {
			return true
		}
	}
	return false
}

// holdsSubmissions reports whether submissions may be non-empty in state s.
func (s State) holdsSubmissions() bool {
	return s == StateBattle || s == StateJudging
}

func checkTransition(from, to State) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}
