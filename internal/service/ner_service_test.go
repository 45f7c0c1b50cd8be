package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talent-graph/internal/config"
	"talent-graph/internal/guardrail"
)

func newTestNER(t *testing.T, handler http.HandlerFunc) *NERService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewNERService(&config.NERConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop())
}

func TestNERDetectParsesSpans(t *testing.T) {
	var gotBody map[string]string
	ner := newTestNER(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/detect", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"entities": [
				{"start": 11, "end": 23, "label": "person"},
				{"start": 34, "end": 38, "label": "DATE"}
			]
		}`))
	})

	spans, err := ner.Detect(context.Background(), "My name is Alex Johnson, class of 2015")

	require.NoError(t, err)
	assert.Equal(t, "My name is Alex Johnson, class of 2015", gotBody["text"])
	require.Len(t, spans, 2)
	assert.Equal(t, guardrail.Span{Start: 11, End: 23, Category: "PERSON"}, spans[0])
	assert.Equal(t, "DATE", spans[1].Category)
}

func TestNERDetectEmptyEntities(t *testing.T) {
	ner := newTestNER(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"entities": []}`))
	})

	spans, err := ner.Detect(context.Background(), "nothing sensitive here")

	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestNERDetectBackendError(t *testing.T) {
	ner := newTestNER(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	})

	_, err := ner.Detect(context.Background(), "text")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestNERDetectInvalidJSON(t *testing.T) {
	ner := newTestNER(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := ner.Detect(context.Background(), "text")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestNERDetectUnreachable(t *testing.T) {
	ner := NewNERService(&config.NERConfig{
		BaseURL:        "http://127.0.0.1:1",
		RequestTimeout: time.Second,
	}, zap.NewNop())

	_, err := ner.Detect(context.Background(), "text")

	assert.Error(t, err)
}
