package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordquest/pkg/models"
)

type stubResolver struct {
	words []string
}

func (s *stubResolver) Resolve(_ context.Context, word string) models.TranslationResult {
	s.words = append(s.words, word)
	if word == "dog" {
		return models.TranslationResult{English: "dog", Russian: "собака", Status: models.TranslationResolved, Tier: models.TierDictionary}
	}
	return models.TranslationResult{English: word, Russian: "Попробуй еще раз", Status: models.TranslationDegraded, Tier: models.TierNone}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, New(&stubResolver{}, nil).Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTranslate(t *testing.T) {
	resolver := &stubResolver{}
	h := New(resolver, nil).Handler()

	rec := get(t, h, "/api/translate?word=dog")
	require.Equal(t, http.StatusOK, rec.Code)
	var body translateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, translateResponse{English: "dog", Russian: "собака", Status: "resolved", Tier: "dictionary"}, body)

	rec = get(t, h, "/api/translate?word=zzz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)

	rec = get(t, h, "/api/translate?word=%20")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"dog", "zzz"}, resolver.words)
}

func TestMetrics(t *testing.T) {
	h := New(&stubResolver{}, nil).Handler()
	get(t, h, "/health")

	rec := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wordquest_http_requests_total")
}
