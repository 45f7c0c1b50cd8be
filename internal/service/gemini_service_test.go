package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestCalculateBackoffBounds(t *testing.T) {
	s := &GeminiService{baseDelay: time.Second, maxDelay: 16 * time.Second}

	cases := []struct {
		attempt int
		base    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 16 * time.Second},
		{6, 16 * time.Second}, // capped
	}
	for _, tc := range cases {
		jitter := time.Duration(float64(tc.base) * 0.25)
		for range 20 {
			d := s.calculateBackoff(tc.attempt)
			assert.GreaterOrEqual(t, d, tc.base-jitter/2, "attempt %d", tc.attempt)
			assert.LessOrEqual(t, d, tc.base+jitter, "attempt %d", tc.attempt)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"rate limited", genai.APIError{Code: 429}, true},
		{"server error", genai.APIError{Code: 503}, true},
		{"bad request", genai.APIError{Code: 400}, false},
		{"unauthorized", &genai.APIError{Code: 401}, false},
		{"gateway timeout ptr", &genai.APIError{Code: 504}, true},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"unknown", errors.New("something else"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.retryable, isRetryableError(tc.err))
		})
	}
}

func TestValidateEmbeddingResponse(t *testing.T) {
	_, err := validateEmbeddingResponse(nil)
	assert.Error(t, err)

	_, err = validateEmbeddingResponse(&genai.EmbedContentResponse{})
	assert.Error(t, err)

	vals, err := validateEmbeddingResponse(&genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2}}},
	})
	assert.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vals)

	_, err = validateEmbeddingResponse(&genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{float32(math.NaN())}}},
	})
	assert.Error(t, err)
}
