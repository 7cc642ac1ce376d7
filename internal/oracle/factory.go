package oracle

import (
	"fmt"

	"ideaforge/internal/config"

	"go.uber.org/zap"
)

// New builds the oracle client selected by cfg.API. "responses" is the
// default wire format; "chat" targets OpenAI-compatible chat endpoints.
func New(cfg *config.Config, log *zap.Logger) (Client, error) {
	switch cfg.API {
	case "", config.APIResponses:
		return NewResponsesClient(ResponsesConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.RequestTimeout(),
		}, log), nil

	case config.APIChat:
		return NewChatClient(ChatConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.RequestTimeout(),
		}, log), nil

	default:
		return nil, fmt.Errorf("unknown oracle API %q (valid: %s, %s)", cfg.API, config.APIResponses, config.APIChat)
	}
}
