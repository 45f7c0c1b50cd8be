package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"talent-graph/internal/config"
	"talent-graph/internal/guardrail"
)

// NERService talks to the entity-recognition backend over HTTP. The backend
// answers POST /detect with {"entities": [{"start": n, "end": n, "label":
// "PERSON"}, ...]}, offsets in bytes. It implements guardrail.Recognizer;
// the masker decides what to do with the spans.
type NERService struct {
	client *resty.Client
	log    *zap.Logger
}

func NewNERService(cfg *config.NERConfig, log *zap.Logger) *NERService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json")
	return &NERService{client: client, log: log}
}

func (s *NERService) Detect(ctx context.Context, text string) ([]guardrail.Span, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		Post("/detect")
	if err != nil {
		return nil, fmt.Errorf("ner request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("ner backend returned status %d: %s", resp.StatusCode(), snippet(resp.String()))
	}

	body := resp.String()
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("ner backend returned invalid JSON")
	}

	entities := gjson.Get(body, "entities").Array()
	spans := make([]guardrail.Span, 0, len(entities))
	for _, e := range entities {
		spans = append(spans, guardrail.Span{
			Start:    int(e.Get("start").Int()),
			End:      int(e.Get("end").Int()),
			Category: strings.ToUpper(e.Get("label").String()),
		})
	}

	s.log.Debug("ner detect", zap.Int("text_len", len(text)), zap.Int("spans", len(spans)))
	return spans, nil
}

func snippet(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
