package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ai-mentor/internal/config"
)

func TestAsError_Classification(t *testing.T) {
	if AsError(nil) != nil {
		t.Fatalf("nil error must map to nil")
	}
	if k := AsError(fmt.Errorf("wrap: %w", context.DeadlineExceeded)).Kind; k != KindTimeout {
		t.Fatalf("deadline: got %s", k)
	}
	if k := AsError(errors.New("connection refused")).Kind; k != KindTransport {
		t.Fatalf("transport: got %s", k)
	}
	orig := statusError(502, "")
	if got := AsError(fmt.Errorf("outer: %w", orig)); got != orig {
		t.Fatalf("typed error not preserved")
	}
	if orig.Detail != "Bad Gateway" {
		t.Fatalf("default detail: %q", orig.Detail)
	}
}

func TestError_Retryable(t *testing.T) {
	cases := []struct {
		err  *Error
		want bool
	}{
		{&Error{Kind: KindTimeout}, true},
		{&Error{Kind: KindTransport}, true},
		{&Error{Kind: KindStatus, StatusCode: 500}, true},
		{&Error{Kind: KindStatus, StatusCode: 429}, true},
		{&Error{Kind: KindStatus, StatusCode: 401}, false},
		{&Error{Kind: KindEmpty}, false},
	}
	for _, tc := range cases {
		if got := tc.err.Retryable(); got != tc.want {
			t.Errorf("%+v: got %v want %v", tc.err, got, tc.want)
		}
	}
}

func TestFactory_CreateClient(t *testing.T) {
	cfg := &config.Config{LLMProvider: config.ProviderClaude, ClaudeAPIKey: "k", ClaudeModel: "m", Temperature: 0.7}
	f := NewFactory(cfg)
	c, err := f.CreateClient(context.Background())
	if err != nil {
		t.Fatalf("claude: %v", err)
	}
	if _, ok := c.(*AnthropicClient); !ok {
		t.Fatalf("want *AnthropicClient, got %T", c)
	}
	if p := f.Params(); p.MaxTokens != 4000 || p.Temperature != 0.7 {
		t.Fatalf("params: %+v", p)
	}

	cfg.LLMProvider = config.ProviderProxy
	c, err = f.CreateClient(context.Background())
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if _, ok := c.(*OpenAIClient); !ok {
		t.Fatalf("want *OpenAIClient, got %T", c)
	}

	cfg.LLMProvider = "nope"
	if _, err := f.CreateClient(context.Background()); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestSplitSystem(t *testing.T) {
	sys, turns := splitSystem([]Message{
		{Role: RoleSystem, Content: "a"},
		{Role: RoleUser, Content: "u"},
		{Role: RoleSystem, Content: "b"},
	})
	if sys != "a\n\nb" || len(turns) != 1 || turns[0].Content != "u" {
		t.Fatalf("got %q %+v", sys, turns)
	}
}
