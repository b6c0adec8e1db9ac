package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionJSON(text string) string {
	resp := ChatCompletionResponse{
		ID:      "cmpl-1",
		Choices: []Choice{{Message: Message{Role: "assistant", Content: text}}},
		Usage:   Usage{PromptTokens: 10, CompletionTokens: 20},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sonar-pro", req.Model, "default model applied")

		_, _ = w.Write([]byte(completionJSON("hello")))
	}))
	defer srv.Close()

	c := NewClient(StaticToken("key-1"), WithBaseURL(srv.URL))
	resp, err := c.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text())
	assert.Equal(t, 10, resp.Usage.PromptTokens)
}

func TestChatCompletion401RetriesOnceWithFreshToken(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 1 {
			assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(completionJSON("ok")))
	}))
	defer srv.Close()

	var fetches atomic.Int32
	ts := NewCachedTokenSource(time.Hour, func(context.Context) (string, error) {
		if fetches.Add(1) == 1 {
			return "stale", nil
		}
		return "fresh", nil
	})

	c := NewClient(ts, WithBaseURL(srv.URL))
	resp, err := c.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
	assert.Equal(t, int32(2), calls.Load(), "exactly one retry after invalidation")
	assert.Equal(t, int32(2), fetches.Load(), "credential refetched once")
}

func TestChatCompletion401TwiceFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(StaticToken("bad"), WithBaseURL(srv.URL))
	_, err := c.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load(), "no retry loop beyond the single re-auth attempt")
}

func TestChatCompletionServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(StaticToken("k"), WithBaseURL(srv.URL))
	_, err := c.ChatCompletion(context.Background(), ChatCompletionRequest{})
	assert.Error(t, err)
}

func TestCachedTokenSourceCaches(t *testing.T) {
	var fetches atomic.Int32
	ts := NewCachedTokenSource(time.Hour, func(context.Context) (string, error) {
		fetches.Add(1)
		return "tok", nil
	})

	for range 3 {
		tok, err := ts.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok", tok)
	}
	assert.Equal(t, int32(1), fetches.Load())

	ts.Invalidate()
	_, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestStaticTokenEmpty(t *testing.T) {
	_, err := StaticToken("").Token(context.Background())
	assert.Error(t, err)
}
