// Package oracle talks to the external text-generation service. The
// pipeline treats the service as a black box: a system/user prompt pair
// goes in, assistant text comes out. Providers differ in endpoint and
// response framing, so each wire format gets its own client behind the
// shared Client interface.
package oracle

import (
	"context"
	"fmt"
	"strings"
)

// Client is the interface the pipeline uses for every oracle call.
// Temperature is chosen per call: high for divergent generation stages,
// low for evaluation and judgment stages. Calls block until completion,
// error, or the client's timeout.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// RequestError reports a transport failure, a timeout, or a non-success
// HTTP status from the oracle. Status is 0 when the request never got a
// response.
type RequestError struct {
	Status int
	Body   string
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("oracle request failed with status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("oracle request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// bodyExcerptLen caps how much response body a RequestError carries.
const bodyExcerptLen = 500

func bodyExcerpt(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > bodyExcerptLen {
		s = s[:bodyExcerptLen]
	}
	return s
}

// envelope covers every response framing the known providers emit: a
// top-level output_text string, a Responses-API output chunk list, or a
// chat-style choices list. Exactly one variant is populated per response.
type envelope struct {
	OutputText string       `json:"output_text"`
	Output     []outputItem `json:"output"`
	Choices    []choice     `json:"choices"`
	Error      *apiError    `json:"error"`
}

type outputItem struct {
	Content []contentChunk `json:"content"`
}

type contentChunk struct {
	Text string `json:"text"`
}

type choice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// normalize resolves the envelope's variants into one assistant string.
// Resolution order mirrors the provider docs: output_text wins, then the
// chunk list, then the first chat choice.
func normalize(env *envelope) (string, error) {
	if env.Error != nil && env.Error.Message != "" {
		return "", fmt.Errorf("oracle returned an error payload: %s", env.Error.Message)
	}

	if env.OutputText != "" {
		return strings.TrimSpace(env.OutputText), nil
	}

	if len(env.Output) > 0 {
		var sb strings.Builder
		for _, item := range env.Output {
			for _, chunk := range item.Content {
				sb.WriteString(chunk.Text)
			}
		}
		if sb.Len() > 0 {
			return strings.TrimSpace(sb.String()), nil
		}
	}

	if len(env.Choices) > 0 {
		return strings.TrimSpace(env.Choices[0].Message.Content), nil
	}

	return "", fmt.Errorf("oracle response carried no assistant text")
}
