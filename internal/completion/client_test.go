package completion

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(Options{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Model:       "gpt-4o",
		Temperature: 0.5,
		MaxTokens:   4000,
		Timeout:     timeout,
	}, zap.NewNop())
}

func TestClient_Complete(t *testing.T) {
	var gotBody []byte
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"score\": 88}"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5*time.Second)
	text, err := c.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"score": 88}`, text)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o", gjson.GetBytes(gotBody, "model").String())
	assert.Equal(t, float64(0.5), gjson.GetBytes(gotBody, "temperature").Float())
	assert.Equal(t, int64(4000), gjson.GetBytes(gotBody, "max_tokens").Int())
	assert.Equal(t, "system", gjson.GetBytes(gotBody, "messages.0.role").String())
	assert.Equal(t, "user", gjson.GetBytes(gotBody, "messages.1.role").String())
}

func TestClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5*time.Second)
	_, err := c.Complete(context.Background(), "s", "u")
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, http.StatusTooManyRequests, cerr.Status)
	assert.Contains(t, cerr.Body, "rate limited")
}

func TestClient_MissingContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5*time.Second)
	_, err := c.Complete(context.Background(), "s", "u")

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 50*time.Millisecond)
	_, err := c.Complete(context.Background(), "s", "u")
	require.Error(t, err)

	var terr *TimeoutError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, 50*time.Millisecond, terr.Wait)
}

func TestGuard_PassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	g := NewGuard(newTestClient(srv.URL, 5*time.Second), GuardSettings{
		CBMaxRequests: 3,
		CBInterval:    5 * time.Second,
		CBTimeout:     30 * time.Second,
		RateLimit:     100,
		RateBurst:     10,
	})

	text, err := g.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestGuard_OpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGuard(newTestClient(srv.URL, 5*time.Second), GuardSettings{
		CBMaxRequests: 1,
		CBInterval:    time.Minute,
		CBTimeout:     time.Minute,
		RateLimit:     1000,
		RateBurst:     100,
	})

	// Порог — больше 5 ошибок подряд
	for i := 0; i < 7; i++ {
		_, err := g.Complete(context.Background(), "s", "u")
		require.Error(t, err)
	}
	assert.Equal(t, "open", g.State().String())
}
