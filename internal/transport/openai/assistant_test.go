package openai

import (
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nuvet/searchdialog/internal/domain"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare json",
			content: `{"kind":"producto","filters":{}}`,
			want:    `{"kind":"producto","filters":{}}`,
		},
		{
			name:    "fenced json",
			content: "```json\n{\"kind\":\"oferta\",\"filters\":{}}\n```",
			want:    `{"kind":"oferta","filters":{}}`,
		},
		{
			name:    "fence without language",
			content: "```\n{\"kind\":\"producto\",\"filters\":{}}\n```",
			want:    `{"kind":"producto","filters":{}}`,
		},
		{
			name:    "prose around json",
			content: "Acá están los parámetros: {\"kind\":\"producto\",\"filters\":{}} espero que sirvan",
			want:    `{"kind":"producto","filters":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.content); got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAPIErrorWrapsSentinel(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"request error", &openai.RequestError{HTTPStatusCode: 503, Body: []byte("overloaded")}},
		{"api error", &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}},
		{"plain error", errors.New("dial tcp: connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAPIError(tt.err)
			if !errors.Is(got, domain.ErrAssistantUnavailable) {
				t.Errorf("parseAPIError(%v) = %v, want wrapped ErrAssistantUnavailable", tt.err, got)
			}
		})
	}
}
