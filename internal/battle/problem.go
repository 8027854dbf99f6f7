package battle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TextGenerator turns a prompt into free-form model text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	ErrNoJSONObject = errors.New("no JSON object in model output")
	ErrNoGenerator  = errors.New("text generator not configured")
)

// Text decodes from a JSON string, or from any other JSON value kept as its
// compact source. Models often answer with arrays where a string was asked for.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return err
	}
	*t = Text(buf.String())
	return nil
}

// TextList decodes from a list or a single string.
type TextList []string

func (l *TextList) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one = strings.TrimSpace(one); one != "" {
			*l = TextList{one}
		} else {
			*l = nil
		}
		return nil
	}
	var many []Text
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	out := make(TextList, 0, len(many))
	for _, t := range many {
		if s := strings.TrimSpace(string(t)); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

type Example struct {
	Input       Text   `json:"input"`
	Output      Text   `json:"output" validate:"required"`
	Explanation string `json:"explanation,omitempty"`
}

type Problem struct {
	Title        string    `json:"title" validate:"required,max=200"`
	Description  string    `json:"description" validate:"required"`
	InputFormat  string    `json:"input_format,omitempty"`
	OutputFormat string    `json:"output_format,omitempty"`
	Examples     []Example `json:"examples" validate:"min=1,dive"`
	Constraints  TextList  `json:"constraints,omitempty"`
}

func (p *Problem) trim() {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.InputFormat = strings.TrimSpace(p.InputFormat)
	p.OutputFormat = strings.TrimSpace(p.OutputFormat)
	for i := range p.Examples {
		p.Examples[i].Input = Text(strings.TrimSpace(string(p.Examples[i].Input)))
		p.Examples[i].Output = Text(strings.TrimSpace(string(p.Examples[i].Output)))
	}
}

// FallbackProblem is served whenever generation fails in any way.
func FallbackProblem() Problem {
	return Problem{
		Title: "Palindrome Check",
		Description: "Given a string s, return true if it reads the same forward and backward " +
			"after converting all uppercase letters to lowercase and removing every " +
			"non-alphanumeric character. Otherwise return false.",
		InputFormat:  "A single line containing the string s.",
		OutputFormat: "Print true or false.",
		Examples: []Example{
			{Input: `"A man, a plan, a canal: Panama"`, Output: "true", Explanation: `"amanaplanacanalpanama" is a palindrome.`},
			{Input: `"race a car"`, Output: "false", Explanation: `"raceacar" is not a palindrome.`},
		},
		Constraints: TextList{"1 <= s.length <= 2 * 10^5", "s consists only of printable ASCII characters."},
	}
}

// ProblemGenerator asks the model for a problem and validates the answer.
type ProblemGenerator struct {
	gen      TextGenerator
	validate *validator.Validate
}

func NewProblemGenerator(gen TextGenerator) *ProblemGenerator {
	return &ProblemGenerator{gen: gen, validate: validator.New()}
}

// Generate always returns a usable problem. A non-nil error means the
// fallback was substituted and says why.
func (g *ProblemGenerator) Generate(ctx context.Context, d Difficulty, language string) (Problem, error) {
	start := time.Now()
	p, err := g.generate(ctx, d, language)
	observeAICall("generate", start, err)
	if err != nil {
		return FallbackProblem(), fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return p, nil
}

func (g *ProblemGenerator) generate(ctx context.Context, d Difficulty, language string) (Problem, error) {
	if g.gen == nil {
		return Problem{}, ErrNoGenerator
	}
	raw, err := g.gen.Generate(ctx, problemPrompt(d, language))
	if err != nil {
		return Problem{}, err
	}
	return g.Parse(raw)
}

// Parse decodes and validates model output, tolerating markdown fences and chatter.
func (g *ProblemGenerator) Parse(raw string) (Problem, error) {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return Problem{}, err
	}
	var p Problem
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return Problem{}, fmt.Errorf("decode problem: %w", err)
	}
	p.trim()
	if err := g.validate.Struct(p); err != nil {
		return Problem{}, fmt.Errorf("invalid problem: %w", err)
	}
	return p, nil
}

func problemPrompt(d Difficulty, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a unique %s level coding problem to be solved in %s.\n", d, language)
	b.WriteString("Respond with only a JSON object, no markdown, with these keys:\n")
	b.WriteString(`"title" (string), "description" (string), "input_format" (string), `)
	b.WriteString(`"output_format" (string), "examples" (a list of objects with "input", "output" `)
	b.WriteString(`and optional "explanation"), "constraints" (a list of strings).` + "\n")
	b.WriteString("Include at least two examples.")
	return b.String()
}

// extractJSONObject drops ``` fence markers and returns the outermost {...} span.
func extractJSONObject(raw string) (string, error) {
	text := fenceMarkers.Replace(raw)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSONObject
	}
	return text[start : end+1], nil
}

var fenceMarkers = strings.NewReplacer("```json", "", "```JSON", "", "```", "")
