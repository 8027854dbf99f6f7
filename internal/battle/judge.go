package battle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Outcome string

const (
	OutcomeWin        Outcome = "win"
	OutcomeTie        Outcome = "tie"
	OutcomeUnresolved Outcome = "unresolved"
)

const unresolvedReason = "The judge could not reach a verdict. The round is an unresolved draw."

var ErrUnknownWinner = errors.New("judge named an unknown or ambiguous winner")

// Contestant is one side of a round as the judge sees it.
type Contestant struct {
	UserID int64
	Name   string
	Code   string
}

type Verdict struct {
	Outcome  Outcome
	WinnerID int64
	Reason   string
}

func unresolved() Verdict {
	return Verdict{Outcome: OutcomeUnresolved, Reason: unresolvedReason}
}

// Judge compares two submissions through the model.
type Judge struct {
	gen TextGenerator
}

func NewJudge(gen TextGenerator) *Judge {
	return &Judge{gen: gen}
}

// Evaluate always returns a verdict. On any failure the verdict is an
// unresolved draw and err says why.
func (j *Judge) Evaluate(ctx context.Context, p Problem, language string, contestants []Contestant) (Verdict, error) {
	start := time.Now()
	v, err := j.evaluate(ctx, p, language, contestants)
	observeAICall("judge", start, err)
	if err != nil {
		return unresolved(), fmt.Errorf("%w: %w", ErrJudging, err)
	}
	return v, nil
}

func (j *Judge) evaluate(ctx context.Context, p Problem, language string, contestants []Contestant) (Verdict, error) {
	if j.gen == nil {
		return Verdict{}, ErrNoGenerator
	}
	names := newNameTable(contestants)
	raw, err := j.gen.Generate(ctx, judgePrompt(p, language, contestants, names))
	if err != nil {
		return Verdict{}, err
	}
	return parseVerdict(raw, names)
}

// nameTable is the per-round mapping between prompt labels and user ids.
type nameTable struct {
	labels map[int64]string
	ids    map[string]int64
}

// newNameTable labels contestants by display name. Blank names become
// "Player N". Names that collide (ignoring case) or read as a tie answer
// get a "(Player N)" suffix.
func newNameTable(cs []Contestant) nameTable {
	t := nameTable{labels: make(map[int64]string), ids: make(map[string]int64)}
	seen := make(map[string]int)
	for _, c := range cs {
		seen[normalizeName(c.Name)]++
	}
	for i, c := range cs {
		label := strings.TrimSpace(c.Name)
		switch {
		case label == "":
			label = fmt.Sprintf("Player %d", i+1)
		case seen[normalizeName(label)] > 1 || isTieName(label):
			label = fmt.Sprintf("%s (Player %d)", label, i+1)
		}
		t.labels[c.UserID] = label
		t.ids[normalizeName(label)] = c.UserID
	}
	return t
}

func (t nameTable) label(userID int64) string { return t.labels[userID] }

func (t nameTable) resolve(name string) (int64, bool) {
	id, ok := t.ids[normalizeName(name)]
	return id, ok
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), `"'`))
}

func judgePrompt(p Problem, language string, cs []Contestant, names nameTable) string {
	var b strings.Builder
	b.WriteString("You are the judge of a head-to-head coding battle.\n\n")
	fmt.Fprintf(&b, "Problem: %s\n%s\n", p.Title, p.Description)
	if p.InputFormat != "" {
		fmt.Fprintf(&b, "Input format: %s\n", p.InputFormat)
	}
	if p.OutputFormat != "" {
		fmt.Fprintf(&b, "Output format: %s\n", p.OutputFormat)
	}
	fmt.Fprintf(&b, "Language: %s\n\n", language)
	for _, c := range cs {
		code := c.Code
		if strings.TrimSpace(code) == "" {
			code = "(no submission)"
		}
		fmt.Fprintf(&b, "Submission from %q:\n<<<\n%s\n>>>\n\n", names.label(c.UserID), code)
	}
	b.WriteString("Decide who wins. Weigh correctness first, then time and space efficiency.\n")
	b.WriteString(`Respond with only a JSON object: {"winner": "<exact player name as quoted above, or TIE>", "reason": "<one or two sentences>"}`)
	return b.String()
}

type rawVerdict struct {
	Winner *string `json:"winner"`
	Reason string  `json:"reason"`
}

func parseVerdict(raw string, names nameTable) (Verdict, error) {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return Verdict{}, err
	}
	var rv rawVerdict
	if err := json.Unmarshal([]byte(obj), &rv); err != nil {
		return Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	reason := strings.TrimSpace(rv.Reason)

	if rv.Winner != nil {
		if id, ok := names.resolve(*rv.Winner); ok {
			if reason == "" {
				reason = names.label(id) + " wins."
			}
			return Verdict{Outcome: OutcomeWin, WinnerID: id, Reason: reason}, nil
		}
	}
	if rv.Winner == nil || isTieName(*rv.Winner) {
		if reason == "" {
			reason = "Both solutions were judged equal."
		}
		return Verdict{Outcome: OutcomeTie, Reason: reason}, nil
	}
	return Verdict{}, fmt.Errorf("%w: %q", ErrUnknownWinner, *rv.Winner)
}

func isTieName(s string) bool {
	switch normalizeName(s) {
	case "", "tie", "draw", "none", "null":
		return true
	}
	return false
}
