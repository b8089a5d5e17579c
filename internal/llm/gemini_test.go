package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newTestGemini(t *testing.T, h http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := newGemini(context.Background(), &genai.ClientConfig{
		APIKey:      "key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL + "/"},
	}, "gemini-test")
	require.NoError(t, err)
	return c
}

func geminiStatus(code int, status, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":%q,"status":%q}}`, code, msg, status)
	}
}

func TestGemini_Generate(t *testing.T) {
	var body map[string]any
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"pong"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":3,"candidatesTokenCount":1,"totalTokenCount":4}}`))
	})

	resp, err := c.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "ping"},
	}, Params{MaxTokens: 64, Temperature: 0.5})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Content)
	assert.Equal(t, "gemini-test", resp.Model)
	assert.Equal(t, 3, resp.PromptTokens)
	assert.Equal(t, 4, resp.TotalTokens)

	contents, ok := body["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 3)
	second, ok := contents[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "model", second["role"])
	assert.NotNil(t, body["systemInstruction"])
}

func TestGemini_StatusErrors(t *testing.T) {
	cases := []struct {
		name      string
		code      int
		status    string
		retryable bool
	}{
		{"server error", http.StatusInternalServerError, "INTERNAL", true},
		{"rate limited", http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", true},
		{"bad request", http.StatusBadRequest, "INVALID_ARGUMENT", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestGemini(t, geminiStatus(tc.code, tc.status, "boom"))
			_, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, Params{})
			le := AsError(err)
			require.NotNil(t, le)
			assert.Equal(t, KindStatus, le.Kind)
			assert.Equal(t, tc.code, le.StatusCode)
			assert.Equal(t, tc.retryable, le.Retryable())
		})
	}
}

func TestGemini_EmptyText(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":""}]},"finishReason":"STOP"}]}`))
	})
	_, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, Params{})
	le := AsError(err)
	require.NotNil(t, le)
	assert.Equal(t, KindEmpty, le.Kind)
}
