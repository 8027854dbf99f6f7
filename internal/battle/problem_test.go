package battle

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type genFunc func(ctx context.Context, prompt string) (string, error)

func (f genFunc) Generate(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }

func fixed(text string) genFunc {
	return func(context.Context, string) (string, error) { return text, nil }
}

const twoSumJSON = "```json\n" + `{
  "title": "Two Sum",
  "description": "Return indices of the two numbers that add up to target.",
  "input_format": "nums and target",
  "output_format": "two indices",
  "examples": [{"input": {"nums": [2, 7, 11, 15], "target": 9}, "output": [0, 1]}],
  "constraints": "2 <= len(nums) <= 10^4"
}` + "\n```"

func TestParseProblem(t *testing.T) {
	g := NewProblemGenerator(nil)
	p, err := g.Parse(twoSumJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Title != "Two Sum" {
		t.Fatalf("title = %q", p.Title)
	}
	if got := string(p.Examples[0].Input); got != `{"nums":[2,7,11,15],"target":9}` {
		t.Fatalf("example input = %q", got)
	}
	if got := string(p.Examples[0].Output); got != "[0,1]" {
		t.Fatalf("example output = %q", got)
	}
	if len(p.Constraints) != 1 || p.Constraints[0] != "2 <= len(nums) <= 10^4" {
		t.Fatalf("constraints = %v", p.Constraints)
	}
}

func TestParseProblemSingleLineFence(t *testing.T) {
	raw := "```json {\"title\": \"T\", \"description\": \"d\", \"examples\": [{\"input\": \"1\", \"output\": \"2\"}]} ```"
	p, err := NewProblemGenerator(nil).Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Title != "T" || len(p.Examples) != 1 || p.Examples[0].Output != "2" {
		t.Fatalf("problem = %+v", p)
	}
}

func TestParseProblemRejects(t *testing.T) {
	cases := map[string]string{
		"no json":        "Sure! Here is a problem about arrays.",
		"missing title":  `{"description": "d", "examples": [{"input": "1", "output": "2"}]}`,
		"blank title":    `{"title": "   ", "description": "d", "examples": [{"input": "1", "output": "2"}]}`,
		"no examples":    `{"title": "t", "description": "d", "examples": []}`,
		"example no out": `{"title": "t", "description": "d", "examples": [{"input": "1"}]}`,
		"broken json":    `{"title": "t", "description": }`,
		"wrong shape":    `{"title": ["a"], "description": "d", "examples": [{"output": "1"}]}`,
	}
	g := NewProblemGenerator(nil)
	for name, raw := range cases {
		if _, err := g.Parse(raw); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestGenerateFallsBack(t *testing.T) {
	boom := errors.New("quota exceeded")
	cases := map[string]TextGenerator{
		"call error": genFunc(func(context.Context, string) (string, error) { return "", boom }),
		"garbage":    fixed("not json at all"),
		"nil":        nil,
	}
	for name, gen := range cases {
		p, err := NewProblemGenerator(gen).Generate(context.Background(), Easy, "Python")
		if !errors.Is(err, ErrGeneration) {
			t.Fatalf("%s: err = %v; want ErrGeneration", name, err)
		}
		if p.Title != "Palindrome Check" || len(p.Examples) == 0 {
			t.Fatalf("%s: expected fallback problem, got %q", name, p.Title)
		}
	}
}

func TestGeneratePromptCarriesConfig(t *testing.T) {
	var prompt string
	gen := genFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return twoSumJSON, nil
	})
	p, err := NewProblemGenerator(gen).Generate(context.Background(), Hard, "Rust")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.Title != "Two Sum" {
		t.Fatalf("title = %q", p.Title)
	}
	if !strings.Contains(prompt, "Hard") || !strings.Contains(prompt, "Rust") {
		t.Fatalf("prompt missing difficulty or language: %q", prompt)
	}
}

func TestFallbackProblemIsValid(t *testing.T) {
	g := NewProblemGenerator(nil)
	if err := g.validate.Struct(FallbackProblem()); err != nil {
		t.Fatalf("fallback invalid: %v", err)
	}
}
