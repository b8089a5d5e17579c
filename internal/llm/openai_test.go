package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_ProxyGenerate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "https://example.org", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "mentor", r.Header.Get("X-Title"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","model":"proxy-m","choices":[{"index":0,"message":{"role":"assistant","content":"pong"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	}))
	defer srv.Close()

	c := NewOpenAI("key", srv.URL+"/v1/", "proxy-m", "https://example.org", "mentor")
	resp, err := c.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "ping"},
	}, Params{MaxTokens: 2048, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Content)
	assert.Equal(t, 4, resp.TotalTokens)

	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.EqualValues(t, 2048, body["max_tokens"])
}

func TestOpenAI_ProxyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("key", srv.URL+"/v1", "m", "", "").Generate(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, Params{})
	le := AsError(err)
	require.NotNil(t, le)
	assert.Equal(t, KindStatus, le.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, le.StatusCode)
	assert.True(t, le.Retryable())
}
