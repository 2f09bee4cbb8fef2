// Package regexlite is a deliberately tiny pattern language used to
// exercise the blessed pipeline end to end: a pattern is either a literal
// (matched by containment) or a single character class.
package regexlite

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/flarebyte/seshat-blessed/internal/harness"
)

type kind int

const (
	kindLiteral kind = iota
	kindCharClass
)

// Pattern is a compiled regexlite pattern.
type Pattern struct {
	kind kind
	text string
}

// MarshalJSON renders the pattern as a single-key variant object, e.g.
// {"Literal": "ab"} or {"CharClass": "xy"}.
func (p Pattern) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case kindCharClass:
		return json.Marshal(map[string]string{"CharClass": p.text})
	default:
		return json.Marshal(map[string]string{"Literal": p.text})
	}
}

// ParseError reports an invalid pattern. It serializes as
// {"InvalidRegex": "<reason>"}.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "invalid regex: " + e.Reason }

// MarshalJSON renders the variant shape expected in golden artifacts.
func (e *ParseError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"InvalidRegex": e.Reason})
}

// Parse compiles a pattern. "[abc]" is a character class; brackets anywhere
// else are rejected; everything else is a literal.
func Parse(pattern string) (Pattern, error) {
	if strings.HasPrefix(pattern, "[") && strings.HasSuffix(pattern, "]") && len(pattern) >= 2 {
		chars := pattern[1 : len(pattern)-1]
		if strings.ContainsAny(chars, "[]") {
			return Pattern{}, &ParseError{Reason: "Nested or mismatched brackets not supported"}
		}
		return Pattern{kind: kindCharClass, text: chars}, nil
	}
	if strings.ContainsAny(pattern, "[]") {
		return Pattern{}, &ParseError{Reason: "Mismatched or misplaced brackets"}
	}
	return Pattern{kind: kindLiteral, text: pattern}, nil
}

// Match reports whether input matches: containment for literals, any-rune
// membership for character classes.
func (p Pattern) Match(input string) bool {
	if p.kind == kindCharClass {
		return strings.ContainsAny(input, p.text)
	}
	return strings.Contains(input, p.text)
}

// Case is the fixture payload for the parse_compile_match harness.
type Case struct {
	Regex  string   `json:"regex"`
	Inputs []string `json:"inputs"`
}

// Output is the harness result. A parse failure is domain data here, not a
// framework error: it lands in ParseError and the artifact is still golden.
type Output struct {
	AST        *Pattern        `json:"ast"`
	ParseError *ParseError     `json:"parse_error"`
	Matches    map[string]bool `json:"matches"`
}

// ParseCompileMatch parses the pattern and evaluates every input.
func ParseCompileMatch(c Case) Output {
	p, err := Parse(c.Regex)
	if err != nil {
		var pe *ParseError
		errors.As(err, &pe)
		return Output{ParseError: pe, Matches: map[string]bool{}}
	}
	matches := make(map[string]bool, len(c.Inputs))
	for _, in := range c.Inputs {
		matches[in] = p.Match(in)
	}
	return Output{AST: &p, Matches: matches}
}

// Entry returns the registry binding for parse_compile_match.
func Entry() harness.Entry {
	return harness.New("parse_compile_match", ParseCompileMatch)
}
