package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

// AnthropicClient talks to the Claude Messages API.
type AnthropicClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
}

func NewAnthropic(apiKey, baseURL, model string, httpClient *http.Client) *AnthropicClient {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &AnthropicClient{
		http:    httpClient,
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *AnthropicClient) Generate(ctx context.Context, messages []Message, params Params) (Response, error) {
	system, turns := splitSystem(messages)
	body := anthropicRequest{
		Model:       c.model,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		System:      system,
		Messages:    normalizeAnthropicTurns(turns),
	}
	data, err := json.Marshal(body)
	if err != nil {
		return Response{}, &Error{Kind: KindTransport, Detail: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(data))
	if err != nil {
		return Response{}, &Error{Kind: KindTransport, Detail: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, transportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		var eb anthropicErrorBody
		detail := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &eb) == nil && eb.Error.Message != "" {
			detail = fmt.Sprintf("%s: %s", eb.Error.Type, eb.Error.Message)
		}
		return Response{}, statusError(resp.StatusCode, detail)
	}

	var out anthropicResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Response{}, &Error{Kind: KindTransport, Detail: "decode response", Err: err}
	}
	var text strings.Builder
	for _, part := range out.Content {
		if part.Type == "text" {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return Response{}, emptyError("no content returned from Claude")
	}
	model := out.Model
	if model == "" {
		model = c.model
	}
	return Response{
		Content:          text.String(),
		Model:            model,
		PromptTokens:     out.Usage.InputTokens,
		CompletionTokens: out.Usage.OutputTokens,
		TotalTokens:      out.Usage.InputTokens + out.Usage.OutputTokens,
	}, nil
}

// normalizeAnthropicTurns makes the turn list acceptable to the Messages
// API: it must start with a user turn and roles must alternate. Leading
// assistant turns are dropped and consecutive same-role turns are merged.
func normalizeAnthropicTurns(turns []Message) []anthropicMessage {
	out := make([]anthropicMessage, 0, len(turns))
	for _, t := range turns {
		role := t.Role
		if role != RoleAssistant {
			role = RoleUser
		}
		if len(out) == 0 && role == RoleAssistant {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + t.Content
			continue
		}
		out = append(out, anthropicMessage{Role: role, Content: t.Content})
	}
	return out
}
