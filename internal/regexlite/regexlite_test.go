package regexlite

import (
	"encoding/json"
	"testing"
)

func TestParseAndMatch(t *testing.T) {
	cases := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"ab", "ab", true},
		{"ab", "xaby", true},
		{"ab", "xy", false},
		{"", "anything", true},
		{"[abc]", "zzc", true},
		{"[abc]", "zz", false},
		{"[]", "abc", false},
	}
	for _, tc := range cases {
		p, err := Parse(tc.pattern)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.pattern, err)
		}
		if got := p.Match(tc.input); got != tc.want {
			t.Fatalf("Match(%q, %q) = %v, want %v", tc.pattern, tc.input, got, tc.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, pattern := range []string{"[a[b]", "a[b", "ab]", "["} {
		if _, err := Parse(pattern); err == nil {
			t.Fatalf("Parse(%q) should fail", pattern)
		}
	}
}

func TestOutputSerialization(t *testing.T) {
	out := ParseCompileMatch(Case{Regex: "ab", Inputs: []string{"ab", "xy"}})
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ast, ok := got["ast"].(map[string]any)
	if !ok || ast["Literal"] != "ab" {
		t.Fatalf("ast should be a Literal variant, got %v", got["ast"])
	}
	if got["parse_error"] != nil {
		t.Fatalf("parse_error should be null, got %v", got["parse_error"])
	}
	matches := got["matches"].(map[string]any)
	if matches["ab"] != true || matches["xy"] != false {
		t.Fatalf("unexpected matches: %v", matches)
	}
}

func TestErrorSerialization(t *testing.T) {
	out := ParseCompileMatch(Case{Regex: "a[b", Inputs: []string{"ab"}})
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["ast"] != nil {
		t.Fatalf("ast should be null on parse error, got %v", got["ast"])
	}
	pe, ok := got["parse_error"].(map[string]any)
	if !ok || pe["InvalidRegex"] == "" {
		t.Fatalf("parse_error should be an InvalidRegex variant, got %v", got["parse_error"])
	}
	if len(got["matches"].(map[string]any)) != 0 {
		t.Fatalf("matches should be empty on parse error")
	}
}

func TestCharClassSerialization(t *testing.T) {
	p, err := Parse("[xy]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"CharClass":"xy"}` {
		t.Fatalf("unexpected serialization: %s", b)
	}
}
