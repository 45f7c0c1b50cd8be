package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"talent-graph/internal/config"
)

// GeminiServiceInterface is what the pipeline needs from the model side:
// a deterministic-enough embedding function and a guardrail-instructable
// generation function.
type GeminiServiceInterface interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateContent(ctx context.Context, systemInstruction, prompt string) (string, error)
}

const maxEmbeddingInputLen = 10000

type GeminiService struct {
	client            *genai.Client
	log               *zap.Logger
	embedModel        string
	generateModel     string
	maxRetries        int
	baseDelay         time.Duration
	maxDelay          time.Duration
	requestTimeout    time.Duration
	consecutiveErrors atomic.Int32
	circuitBreakerMax int32
}

func NewGeminiService(ctx context.Context, cfg *config.GeminiConfig, log *zap.Logger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{
		client:            client,
		log:               log,
		embedModel:        cfg.EmbedModel,
		generateModel:     cfg.GenerateModel,
		maxRetries:        cfg.MaxRetries,
		baseDelay:         time.Second,
		maxDelay:          cfg.RequestTimeout,
		requestTimeout:    cfg.RequestTimeout,
		circuitBreakerMax: 5,
	}, nil
}

// GenerateContent runs one generation call with the given system instruction
// pinned for the whole exchange. Retries transient failures with backoff and
// returns the response text.
func (s *GeminiService) GenerateContent(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	if s.breakerOpen() {
		return "", fmt.Errorf("circuit breaker open: too many consecutive errors (%d)", s.consecutiveErrors.Load())
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}
	if systemInstruction != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			s.log.Debug("retrying generate content",
				zap.Int("attempt", attempt), zap.Int("max", s.maxRetries), zap.Duration("delay", delay))

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				return "", fmt.Errorf("context timeout during retry: %w", timeoutCtx.Err())
			}
		}

		result, err := s.client.Models.GenerateContent(timeoutCtx, s.generateModel, genai.Text(prompt), genConfig)
		if err == nil {
			s.consecutiveErrors.Store(0)
			if err := validateGenerateResponse(result); err != nil {
				return "", fmt.Errorf("invalid response: %w", err)
			}
			return result.Text(), nil
		}

		lastErr = err
		if !isRetryableError(err) {
			s.log.Warn("non-retryable generation error", zap.Error(err))
			s.consecutiveErrors.Add(1)
			return "", fmt.Errorf("generate content failed: %w", err)
		}
		s.log.Debug("retryable generation error", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	s.consecutiveErrors.Add(1)
	return "", fmt.Errorf("max retries (%d) exceeded for GenerateContent: %w", s.maxRetries, lastErr)
}

// GenerateEmbedding embeds one text. For identical input the backing model
// returns identical vectors, which keeps retrieval reproducible.
func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}
	if len(trimmed) > maxEmbeddingInputLen {
		s.log.Warn("truncating embedding input", zap.Int("length", len(trimmed)))
		trimmed = trimmed[:maxEmbeddingInputLen]
	}
	if s.breakerOpen() {
		return nil, fmt.Errorf("circuit breaker open: too many consecutive errors (%d)", s.consecutiveErrors.Load())
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	content := []*genai.Content{genai.NewContentFromText(trimmed, genai.RoleUser)}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			s.log.Debug("retrying embedding",
				zap.Int("attempt", attempt), zap.Int("max", s.maxRetries), zap.Duration("delay", delay))

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				return nil, fmt.Errorf("context timeout during retry: %w", timeoutCtx.Err())
			}
		}

		result, err := s.client.Models.EmbedContent(timeoutCtx, s.embedModel, content, nil)
		if err == nil {
			s.consecutiveErrors.Store(0)
			return validateEmbeddingResponse(result)
		}

		lastErr = err
		if !isRetryableError(err) {
			s.log.Warn("non-retryable embedding error", zap.Error(err))
			s.consecutiveErrors.Add(1)
			return nil, fmt.Errorf("generate embedding failed: %w", err)
		}
		s.log.Debug("retryable embedding error", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	s.consecutiveErrors.Add(1)
	return nil, fmt.Errorf("max retries (%d) exceeded for GenerateEmbedding: %w", s.maxRetries, lastErr)
}

func (s *GeminiService) breakerOpen() bool {
	return s.consecutiveErrors.Load() >= s.circuitBreakerMax
}

func (s *GeminiService) calculateBackoff(attempt int) time.Duration {
	delay := s.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.maxDelay {
		delay = s.maxDelay
	}

	jitter := time.Duration(float64(delay) * 0.25)
	delay = delay - jitter/2 + time.Duration(rand.Float64()*float64(jitter))

	return delay
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errMsg := err.Error()
	if strings.Contains(errMsg, "context canceled") ||
		strings.Contains(errMsg, "context deadline exceeded") {
		return false
	}

	var code int
	switch apiErr := err.(type) {
	case genai.APIError:
		code = apiErr.Code
	case *genai.APIError:
		code = apiErr.Code
	}
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	case 400, 401, 403, 404:
		return false
	}

	if strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF") {
		return true
	}

	return false
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, val := range values {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return values, nil
}
