package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Morwran/yagpt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeYa struct {
	tokens []string
	sent   []yagpt.Message
	resp   *yagpt.CompletionResponse
	err    error
}

func (f *fakeYa) CompletionWithCtx(_ context.Context, iamTok string, m []yagpt.Message) (*yagpt.CompletionResponse, error) {
	f.tokens = append(f.tokens, iamTok)
	f.sent = m
	return f.resp, f.err
}

func (f *fakeYa) Completion(iamTok string, m []yagpt.Message) (*yagpt.CompletionResponse, error) {
	return f.CompletionWithCtx(context.Background(), iamTok, m)
}

func newTestYandex(ya yagpt.YaGPTFace, issued time.Time, refresh func() (string, error)) *YandexClient {
	return &YandexClient{ya: ya, refresh: refresh, iamToken: "iam-1", issuedAt: issued}
}

func TestYandex_RolesAndUsage(t *testing.T) {
	ya := &fakeYa{resp: &yagpt.CompletionResponse{
		Alternatives: []yagpt.Alternative{{Message: yagpt.Message{Role: "assistant", Content: "pong"}}},
		Usage:        yagpt.ContentUsage{InputTextTokens: 5, CompletionTokens: 2, TotalTokens: 7},
	}}
	c := newTestYandex(ya, time.Now(), nil)

	resp, err := c.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: "unknown", Content: "ping"},
	}, Params{})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Content)
	assert.Equal(t, 5, resp.PromptTokens)
	assert.Equal(t, 2, resp.CompletionTokens)
	assert.Equal(t, 7, resp.TotalTokens)

	want := []yagpt.Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "ping"},
	}
	assert.Equal(t, want, ya.sent)
	assert.Equal(t, []string{"iam-1"}, ya.tokens)
}

func TestYandex_RefreshesStaleToken(t *testing.T) {
	ya := &fakeYa{resp: &yagpt.CompletionResponse{
		Alternatives: []yagpt.Alternative{{Message: yagpt.Message{Content: "ok"}}},
	}}
	c := newTestYandex(ya, time.Now().Add(-2*yandexTokenTTL), func() (string, error) { return "iam-2", nil })

	_, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, Params{})
	require.NoError(t, err)
	assert.Equal(t, []string{"iam-2"}, ya.tokens)
}

func TestYandex_Failures(t *testing.T) {
	t.Run("refresh", func(t *testing.T) {
		c := newTestYandex(&fakeYa{}, time.Now().Add(-2*yandexTokenTTL), func() (string, error) { return "", errors.New("denied") })
		_, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, Params{})
		le := AsError(err)
		require.NotNil(t, le)
		assert.Equal(t, KindTransport, le.Kind)
	})
	t.Run("completion", func(t *testing.T) {
		c := newTestYandex(&fakeYa{err: errors.New("unavailable")}, time.Now(), nil)
		_, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, Params{})
		le := AsError(err)
		require.NotNil(t, le)
		assert.Equal(t, KindTransport, le.Kind)
		assert.True(t, le.Retryable())
	})
	t.Run("no alternatives", func(t *testing.T) {
		c := newTestYandex(&fakeYa{resp: &yagpt.CompletionResponse{}}, time.Now(), nil)
		_, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, Params{})
		le := AsError(err)
		require.NotNil(t, le)
		assert.Equal(t, KindEmpty, le.Kind)
	})
}
