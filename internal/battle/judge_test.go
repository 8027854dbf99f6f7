package battle

import (
	"context"
	"errors"
	"strings"
	"testing"
)

var alicebob = []Contestant{
	{UserID: 1, Name: "Alice", Code: "def solve(): return 1"},
	{UserID: 2, Name: "Bob", Code: "def solve(): return 2"},
}

func TestNameTableDisambiguates(t *testing.T) {
	tbl := newNameTable([]Contestant{{UserID: 10, Name: "Sam"}, {UserID: 20, Name: "sam "}})
	if tbl.label(10) == tbl.label(20) {
		t.Fatalf("labels collide: %q", tbl.label(10))
	}
	if id, ok := tbl.resolve("Sam (Player 2)"); !ok || id != 20 {
		t.Fatalf("resolve disambiguated = %d, %v", id, ok)
	}
	if _, ok := tbl.resolve("Sam"); ok {
		t.Fatalf("bare colliding name must not resolve")
	}

	blank := newNameTable([]Contestant{{UserID: 3}, {UserID: 4, Name: "Dee"}})
	if blank.label(3) != "Player 1" {
		t.Fatalf("blank label = %q", blank.label(3))
	}
}

func TestParseVerdict(t *testing.T) {
	names := newNameTable(alicebob)
	cases := []struct {
		name    string
		raw     string
		outcome Outcome
		winner  int64
		wantErr bool
	}{
		{"winner", `{"winner": "Alice", "reason": "faster"}`, OutcomeWin, 1, false},
		{"fenced case-insensitive", "```json\n{\"winner\": \"bob\", \"reason\": \"correct\"}\n```", OutcomeWin, 2, false},
		{"tie", `{"winner": "TIE", "reason": "same"}`, OutcomeTie, 0, false},
		{"null winner", `{"winner": null, "reason": "both wrong"}`, OutcomeTie, 0, false},
		{"unknown", `{"winner": "Carol", "reason": "?"}`, "", 0, true},
		{"not json", `Alice wins clearly.`, "", 0, true},
	}
	for _, tc := range cases {
		v, err := parseVerdict(tc.raw, names)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if v.Outcome != tc.outcome || v.WinnerID != tc.winner {
			t.Fatalf("%s: got %+v", tc.name, v)
		}
	}
}

func TestParseVerdictPlayerNamedTie(t *testing.T) {
	names := newNameTable([]Contestant{{UserID: 1, Name: "Tie"}, {UserID: 2, Name: "Bob"}})
	if got := names.label(1); got != "Tie (Player 1)" {
		t.Fatalf("label = %q", got)
	}

	v, err := parseVerdict(`{"winner": "Tie (Player 1)", "reason": "only correct one"}`, names)
	if err != nil {
		t.Fatalf("parseVerdict: %v", err)
	}
	if v.Outcome != OutcomeWin || v.WinnerID != 1 {
		t.Fatalf("labelled winner: got %+v", v)
	}

	v, err = parseVerdict(`{"winner": "Tie", "reason": "same"}`, names)
	if err != nil {
		t.Fatalf("parseVerdict: %v", err)
	}
	if v.Outcome != OutcomeTie || v.WinnerID != 0 {
		t.Fatalf("bare tie: got %+v", v)
	}
}

func TestEvaluate(t *testing.T) {
	var prompt string
	gen := genFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return `{"winner": "Bob", "reason": "Bob handles empty input."}`, nil
	})
	v, err := NewJudge(gen).Evaluate(context.Background(), FallbackProblem(), "Python", alicebob)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Outcome != OutcomeWin || v.WinnerID != 2 || v.Reason != "Bob handles empty input." {
		t.Fatalf("verdict = %+v", v)
	}
	for _, want := range []string{"Palindrome Check", `"Alice"`, `"Bob"`, "return 1", "return 2", "Python"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestEvaluateFailureIsUnresolved(t *testing.T) {
	cases := map[string]TextGenerator{
		"call error": genFunc(func(context.Context, string) (string, error) { return "", context.DeadlineExceeded }),
		"unknown":    fixed(`{"winner": "Mallory", "reason": "x"}`),
		"nil":        nil,
	}
	for name, gen := range cases {
		v, err := NewJudge(gen).Evaluate(context.Background(), FallbackProblem(), "Go", alicebob)
		if !errors.Is(err, ErrJudging) {
			t.Fatalf("%s: err = %v; want ErrJudging", name, err)
		}
		if v.Outcome != OutcomeUnresolved {
			t.Fatalf("%s: outcome = %s", name, v.Outcome)
		}
	}
}
