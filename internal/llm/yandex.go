package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Morwran/yagpt"
)

// IAM tokens live up to 12h; refresh well before that.
const yandexTokenTTL = time.Hour

type YandexClient struct {
	ya      yagpt.YaGPTFace
	refresh func() (string, error)

	mu       sync.Mutex
	iamToken string
	issuedAt time.Time
}

func NewYandex(oauthToken, folderID string) (*YandexClient, error) {
	// Create IAM token from OAuth token
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init yandex iam: %w", err)
	}
	refresh := func() (string, error) {
		resp, err := iam.Create()
		if err != nil {
			return "", fmt.Errorf("failed to create iam token: %w", err)
		}
		return resp.IamToken, nil
	}
	token, err := refresh()
	if err != nil {
		return nil, err
	}

	// Create YaGPT client for a folder
	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to init yagpt: %w", err)
	}

	return &YandexClient{
		ya:       ya,
		refresh:  refresh,
		iamToken: token,
		issuedAt: time.Now(),
	}, nil
}

func (c *YandexClient) token() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.issuedAt) < yandexTokenTTL {
		return c.iamToken, nil
	}
	tok, err := c.refresh()
	if err != nil {
		return "", err
	}
	c.iamToken, c.issuedAt = tok, time.Now()
	return tok, nil
}

// Generate sends the turns as-is. yagpt does not expose sampling options, so
// params are not forwarded; the service defaults apply.
func (c *YandexClient) Generate(ctx context.Context, messages []Message, _ Params) (Response, error) {
	tok, err := c.token()
	if err != nil {
		return Response{}, &Error{Kind: KindTransport, Detail: "iam token refresh failed", Err: err}
	}
	yaMsgs := make([]yagpt.Message, 0, len(messages))
	for _, m := range messages {
		ym := yagpt.Message{Content: m.Content}
		switch m.Role {
		case RoleSystem:
			ym.Role = "system"
		case RoleAssistant:
			ym.Role = "assistant"
		default:
			ym.Role = "user"
		}
		yaMsgs = append(yaMsgs, ym)
	}

	resp, err := c.ya.CompletionWithCtx(ctx, tok, yaMsgs)
	if err != nil {
		return Response{}, transportError(fmt.Errorf("yagpt completion failed: %w", err))
	}
	if resp == nil || len(resp.Alternatives) == 0 {
		return Response{}, emptyError("yagpt returned empty response")
	}
	out := Response{Content: resp.Alternatives[0].Message.Content, Model: yagpt.YaModelLite}
	out.PromptTokens = int(resp.Usage.InputTextTokens)
	out.CompletionTokens = int(resp.Usage.CompletionTokens)
	out.TotalTokens = int(resp.Usage.TotalTokens)
	return out, nil
}
