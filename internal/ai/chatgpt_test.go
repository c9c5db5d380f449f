package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresKey(t *testing.T) {
	_, err := New("", "https://api.openai.com/v1", "gpt-4o-mini")
	assert.Error(t, err)
}

func TestGenerateTranslation_SendsSchema(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":" {\"english\":\"cat\",\"russian\":\"кошка\"} "}}]}`))
	}))
	defer srv.Close()

	client, err := New("secret", srv.URL+"/v1/", "test-model")
	require.NoError(t, err)
	defer client.Close()

	text, err := client.GenerateTranslation(context.Background(), "cat")
	require.NoError(t, err)
	assert.Equal(t, `{"english":"cat","russian":"кошка"}`, text)

	assert.Equal(t, "test-model", got.Model)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_schema", got.ResponseFormat.Type)
	require.NotNil(t, got.ResponseFormat.JSONSchema)
	assert.True(t, got.ResponseFormat.JSONSchema.Strict)
	assert.Contains(t, got.Messages[1].Content, `"cat"`)
}

func TestGenerateTranslation_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	}))
	defer srv.Close()

	client, err := New("bad", srv.URL, "test-model")
	require.NoError(t, err)

	_, err = client.GenerateTranslation(context.Background(), "cat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid key")
}

func TestGenerateTranslation_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client, err := New("key", srv.URL, "test-model")
	require.NoError(t, err)

	_, err = client.GenerateTranslation(context.Background(), "cat")
	assert.Error(t, err)
}

func TestGenerateTranslation_RespectsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, err := New("key", srv.URL, "test-model")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.GenerateTranslation(ctx, "cat")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
