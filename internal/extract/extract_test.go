package extract

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stimulusPayload struct {
	Nouns     []string `json:"nouns"`
	Abstracts []string `json:"abstracts"`
	Actions   []string `json:"actions"`
	Cross     []string `json:"cross"`
}

var wantStimulus = stimulusPayload{
	Nouns:     []string{"a", "b", "c"},
	Abstracts: []string{"d", "e", "f"},
	Actions:   []string{"g", "h"},
	Cross:     []string{"i", "j"},
}

const stimulusJSON = `{"nouns":["a","b","c"],"abstracts":["d","e","f"],"actions":["g","h"],"cross":["i","j"]}`

func TestObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bare JSON", stimulusJSON},
		{"whitespace wrapped", "  \n\t" + stimulusJSON + "\n  "},
		{"json fence", "```json\n" + stimulusJSON + "\n```"},
		{"fence without language", "```\n" + stimulusJSON + "\n```"},
		{"prose before and after", "Sure, here is the word bank you asked for:\n\n" + stimulusJSON + "\n\nLet me know if you need more."},
		{"prose plus fence", "Here you go:\n```json\n" + stimulusJSON + "\n```\nEnjoy!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got stimulusPayload
			if err := Object(tt.input, &got); err != nil {
				t.Fatalf("Object() error = %v", err)
			}
			if diff := cmp.Diff(wantStimulus, got); diff != "" {
				t.Errorf("Object() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"bare array", `["x","y"]`, []string{"x", "y"}},
		{"fenced array", "```json\n[\"x\",\"y\"]\n```", []string{"x", "y"}},
		{"array in prose", "The candidates are: [\"x\",\"y\"] as requested.", []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			if err := Array(tt.input, &got); err != nil {
				t.Fatalf("Array() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Array() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestObjectFallsBackToArraySpan(t *testing.T) {
	// Callers asking for an object still succeed when the model produced a
	// bare array, as long as the target type accepts it.
	var got []int
	if err := Object("prefix [1,2,3] suffix", &got); err != nil {
		t.Fatalf("Object() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Object() = %v, want 3 elements", got)
	}
}

func TestParseError(t *testing.T) {
	var v map[string]interface{}

	t.Run("no JSON at all", func(t *testing.T) {
		err := Object("I could not produce any structured output, sorry.", &v)
		perr, ok := err.(*ParseError)
		if !ok {
			t.Fatalf("Object() error = %T, want *ParseError", err)
		}
		if perr.Prefix == "" {
			t.Error("ParseError.Prefix is empty")
		}
	})

	t.Run("prefix is truncated", func(t *testing.T) {
		long := strings.Repeat("x", 5000)
		err := Object(long, &v)
		perr, ok := err.(*ParseError)
		if !ok {
			t.Fatalf("Object() error = %T, want *ParseError", err)
		}
		if len(perr.Prefix) != PrefixLen {
			t.Errorf("len(Prefix) = %d, want %d", len(perr.Prefix), PrefixLen)
		}
	})

	t.Run("malformed braces", func(t *testing.T) {
		if err := Object(`{"unterminated": `, &v); err == nil {
			t.Fatal("Object() = nil error, want *ParseError")
		}
	})
}

func TestObjectTypeMismatchReportsParseError(t *testing.T) {
	var got []string
	err := Object(`{"key":"value"}`, &got)
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("Object() error = %T, want *ParseError", err)
	}
}
