// Package extract recovers structured JSON from noisy model output.
// Models routinely wrap the JSON they were asked for in prose or markdown
// code fences; every caller that expects JSON goes through this package
// instead of calling json.Unmarshal on raw completions.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PrefixLen is how much of the offending text a ParseError keeps for
// diagnostics.
const PrefixLen = 200

// ParseError reports that no JSON value could be recovered from a
// completion. Prefix holds the start of the text that defeated every
// strategy.
type ParseError struct {
	Prefix string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no JSON value found in model output (starts with: %q)", e.Prefix)
}

// Object recovers a single JSON object from text and unmarshals it into v.
func Object(text string, v interface{}) error {
	raw, err := recoverJSON(text, '{', '}')
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return newParseError(text)
	}
	return nil
}

// Array recovers a JSON array from text and unmarshals it into v.
func Array(text string, v interface{}) error {
	raw, err := recoverJSON(text, '[', ']')
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return newParseError(text)
	}
	return nil
}

// recoverJSON tries, in order: the trimmed text as-is, the text with
// markdown fences stripped, and finally the greedy span between the first
// open and last close delimiter. The array span is the fallback when the
// caller asked for an object and no object span parses, and vice versa.
func recoverJSON(text string, open, close byte) ([]byte, error) {
	trimmed := strings.TrimSpace(text)
	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}

	if unfenced := stripFence(trimmed); unfenced != "" && json.Valid([]byte(unfenced)) {
		return []byte(unfenced), nil
	}

	if span := greedySpan(trimmed, open, close); span != "" && json.Valid([]byte(span)) {
		return []byte(span), nil
	}

	// Cross fallback: an object was requested but the model produced an
	// array, or the other way round.
	altOpen, altClose := byte('['), byte(']')
	if open == '[' {
		altOpen, altClose = '{', '}'
	}
	if span := greedySpan(trimmed, altOpen, altClose); span != "" && json.Valid([]byte(span)) {
		return []byte(span), nil
	}

	return nil, newParseError(text)
}

// stripFence removes a leading ``` marker (with optional language tag) and
// the trailing ``` marker. Returns "" when the text is not fenced.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return ""
	}
	body := s[3:]
	if nl := strings.IndexByte(body, '\n'); nl != -1 {
		// Drop the language tag line ("json", "JSON", or empty).
		body = body[nl+1:]
	}
	end := strings.LastIndex(body, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(body[:end])
}

// greedySpan returns the substring from the first open delimiter to the
// last close delimiter, or "" when no such span exists.
func greedySpan(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}

func newParseError(text string) *ParseError {
	p := strings.TrimSpace(text)
	if len(p) > PrefixLen {
		p = p[:PrefixLen]
	}
	return &ParseError{Prefix: p}
}
