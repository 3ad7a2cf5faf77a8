package llmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bakai-assistant/config"
	apperrors "bakai-assistant/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		LLMRequestTimeout: 5 * time.Second,
		MaxRetries:        3,
		RetryDelaySeconds: time.Millisecond,
	}
}

func TestEmbedParsesLlamaCppResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "как открыть карту", req.Content)
		w.Write([]byte(`[{"embedding":[[0.1,0.2,0.3]]}]`))
	}))
	defer srv.Close()

	client := New(testConfig(), zap.NewNop())
	vec, err := client.Embed(context.Background(), srv.URL+"/", "как открыть карту")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedRetriesWhileModelLoads(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"embedding":[[1]]}]`))
	}))
	defer srv.Close()

	client := New(testConfig(), zap.NewNop())
	vec, err := client.Embed(context.Background(), srv.URL, "doc")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbedErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server_error", status: http.StatusInternalServerError, body: "boom", wantErr: apperrors.ErrEmbedding},
		{name: "empty_embedding", status: http.StatusOK, body: `[]`, wantErr: apperrors.ErrEmbedding},
		{name: "always_loading", status: http.StatusServiceUnavailable, wantErr: apperrors.ErrEmbedding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := New(testConfig(), zap.NewNop())
			_, err := client.Embed(context.Background(), srv.URL, "doc")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEmbedRequiresHost(t *testing.T) {
	client := New(testConfig(), zap.NewNop())
	_, err := client.Embed(context.Background(), " ", "doc")
	assert.True(t, apperrors.IsInvalidInput(err))
}
