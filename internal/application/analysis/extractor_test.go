package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_UsesModelAnswer(t *testing.T) {
	llm := &stubLLM{fn: func(ctx context.Context, system, user string) (string, error) {
		return "\"SSH brute force attack indicators\"\n", nil
	}}
	e := &Extractor{LLM: llm}

	query, fromModel := e.Extract(context.Background(), "Failed password for admin", nil)
	assert.True(t, fromModel)
	assert.Equal(t, "SSH brute force attack indicators", query)
}

func TestExtract_TruncatesLongModelAnswer(t *testing.T) {
	llm := &stubLLM{fn: func(ctx context.Context, system, user string) (string, error) {
		return strings.Repeat("keyword ", 40), nil
	}}
	e := &Extractor{LLM: llm}

	query, fromModel := e.Extract(context.Background(), "some log", nil)
	assert.True(t, fromModel)
	assert.LessOrEqual(t, len(query), 100)
	assert.NotEmpty(t, query)
}

func TestExtract_FallbackWhenModelFails(t *testing.T) {
	llm := &stubLLM{fn: func(ctx context.Context, system, user string) (string, error) {
		return "", errors.New("llm unavailable")
	}}
	e := &Extractor{LLM: llm}

	query, fromModel := e.Extract(context.Background(), "Failed password for admin from 203.0.113.42", nil)
	assert.False(t, fromModel)
	assert.Equal(t, "SSH authentication failure brute force", query)
}

func TestExtract_FallbackWhenModelAnswerTooShort(t *testing.T) {
	llm := &stubLLM{fn: func(ctx context.Context, system, user string) (string, error) {
		return "ok", nil
	}}
	e := &Extractor{LLM: llm}

	query, fromModel := e.Extract(context.Background(), "unauthorized access attempt detected on port 22", nil)
	assert.False(t, fromModel)
	assert.Equal(t, "unauthorized access attempt", query)
}

func TestFallbackQuery_Patterns(t *testing.T) {
	tests := []struct {
		name string
		log  string
		want string
	}{
		{
			name: "cve reference",
			log:  "CRITICAL: Buffer overflow detected, potential CVE-2024-1234 exploitation",
			want: "cve-2024-1234",
		},
		{
			name: "sql injection keyword",
			log:  "WAF blocked possible SQL injection in /login",
			want: "sql injection",
		},
		{
			name: "failed login heuristic",
			log:  "Failed login attempt for user root",
			want: "ssh authentication failure brute force",
		},
		{
			name: "injection heuristic",
			log:  "suspicious payload injection blocked",
			want: "code injection attack",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fallbackQuery(tt.log)
			assert.Contains(t, strings.ToLower(got), tt.want)
		})
	}
}

func TestFallbackQuery_NeverEmpty(t *testing.T) {
	assert.NotEmpty(t, fallbackQuery(""))
	assert.NotEmpty(t, fallbackQuery("completely benign informational line"))
	assert.NotEmpty(t, fallbackQuery(strings.Repeat("a", 500)))
}
