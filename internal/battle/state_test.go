package battle

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to State
		want     bool
	}{
		{StateWaiting, StateSetup, true},
		{StateSetup, StateGenerating, true},
		{StateGenerating, StateBattle, true},
		{StateBattle, StateJudging, true},
		{StateJudging, StateResult, true},
		{StateResult, StateSetup, true},
		{StateWaiting, StateBattle, false},
		{StateSetup, StateBattle, false},
		{StateBattle, StateSetup, false},
		{StateJudging, StateBattle, false},
		{StateResult, StateJudging, false},
		{StateBattle, StateBattle, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Fatalf("%s -> %s = %v; want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestSessionTransitionClearsSubmissions(t *testing.T) {
	s := newSession("AB12", &Player{UserID: 1}, testEpoch)
	s.State = StateJudging
	s.Submissions[1] = Submission{Code: "print(1)"}

	if err := s.transition(StateResult); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if len(s.Submissions) != 0 {
		t.Fatalf("submissions kept in result: %v", s.Submissions)
	}
	if err := s.transition(StateBattle); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("result -> battle err = %v; want ErrIllegalTransition", err)
	}
	if s.State != StateResult {
		t.Fatalf("state changed by rejected transition: %s", s.State)
	}
}
