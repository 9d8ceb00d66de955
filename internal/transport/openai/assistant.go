// Package openai adapts an OpenAI-compatible chat API as the parameter
// rebuild assistant for modification turns the rule-based detector cannot
// decode.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/nuvet/searchdialog/internal/domain"
	"github.com/nuvet/searchdialog/internal/domain/spec"
	"github.com/nuvet/searchdialog/internal/metrics"
)

const systemPrompt = `Sos un asistente que reconstruye los parámetros de una búsqueda veterinaria.
Recibís los parámetros actuales (JSON) y el pedido de cambio del usuario.
Respondé SOLO con el JSON de los parámetros resultantes, con el mismo esquema
{"kind": "...", "filters": {...}} y sin texto adicional.`

// Assistant rebuilds search parameters via a chat completion model.
type Assistant struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// Config holds the assistant provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Logger      *zap.Logger
}

// NewAssistant creates an OpenAI-compatible assistant client.
func NewAssistant(cfg *Config) *Assistant {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assistant{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// RebuildParameters asks the model to apply the user's change request to
// the current parameters and returns the resulting specification.
func (a *Assistant) RebuildParameters(
	ctx context.Context, previous spec.Spec, text string, kind spec.Kind,
) (spec.Spec, error) {
	current, err := json.Marshal(previous)
	if err != nil {
		return spec.Spec{}, fmt.Errorf("encode parameters: %w", err)
	}

	userPrompt := fmt.Sprintf(
		"Tipo de búsqueda: %s\nParámetros actuales: %s\nPedido del usuario: %s",
		kind, current, text,
	)

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	duration := time.Since(start)

	if err != nil {
		metrics.AssistantRequestsTotal.WithLabelValues(a.model, "error").Inc()
		return spec.Spec{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.AssistantRequestsTotal.WithLabelValues(a.model, "error").Inc()
		return spec.Spec{}, fmt.Errorf("empty completion response: %w", domain.ErrAssistantUnavailable)
	}

	content := resp.Choices[0].Message.Content
	var rebuilt spec.Spec
	if err := json.Unmarshal([]byte(extractJSON(content)), &rebuilt); err != nil {
		metrics.AssistantRequestsTotal.WithLabelValues(a.model, "error").Inc()
		a.logger.Warn("assistant returned unparseable parameters",
			zap.String("content", content), zap.Error(err))
		return spec.Spec{}, fmt.Errorf("decode rebuilt parameters: %w", domain.ErrAssistantUnavailable)
	}
	if rebuilt.Kind() == "" {
		rebuilt = rebuilt.SetKind(kind)
	}

	metrics.AssistantRequestsTotal.WithLabelValues(a.model, "success").Inc()
	a.logger.Debug("assistant rebuilt parameters",
		zap.Duration("duration", duration),
		zap.Int("filters", rebuilt.Len()),
	)
	return rebuilt, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (a *Assistant) HealthCheck(ctx context.Context) error {
	if _, err := a.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// extractJSON strips a markdown code fence when the model wraps its reply
// in one, and otherwise cuts from the first { to the last }.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrAssistantUnavailable.
func parseAPIError(err error) error {
	wrap := domain.ErrAssistantUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("assistant API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("assistant API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("assistant request failed: %w", wrap)
}
