// Package generator turns a user message plus memory context into one
// completion request and converts any backend failure into a reply text.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"ai-mentor/internal/llm"
	"ai-mentor/internal/memory"
)

// HistoryWindow is the number of prior entries (three exchanges) forwarded
// to the backend.
const HistoryWindow = 6

const (
	defaultTimeout    = 60 * time.Second
	defaultRetryDelay = time.Second
)

type Request struct {
	Message string
	History []memory.HistoryEntry
	Summary string
}

// Result is either generated text or a typed failure. On failure Text holds
// the user-facing error message.
type Result struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Attempts         int
	Err              *llm.Error
}

func (r Result) Failed() bool { return r.Err != nil }

type Generator struct {
	client       llm.Client
	instructions string
	params       llm.Params
	timeout      time.Duration
	retries      int
	retryDelay   time.Duration
	logger       *zap.Logger
}

type Option func(*Generator)

// WithTimeout bounds each backend attempt.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithRetries sets how many extra attempts a retryable failure gets.
func WithRetries(n int, delay time.Duration) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.retries = n
		}
		if delay > 0 {
			g.retryDelay = delay
		}
	}
}

func New(client llm.Client, instructions string, params llm.Params, logger *zap.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{
		client:       client,
		instructions: instructions,
		params:       params,
		timeout:      defaultTimeout,
		retries:      1,
		retryDelay:   defaultRetryDelay,
		logger:       logger,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// BuildMessages assembles the prompt: one system turn with instructions and
// the context summary, the last HistoryWindow entries in order, then the new
// message.
func (g *Generator) BuildMessages(req Request) []llm.Message {
	history := req.History
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	msgs := make([]llm.Message, 0, len(history)+2)
	system := strings.TrimSpace(g.instructions)
	if s := strings.TrimSpace(req.Summary); s != "" {
		system += "\n\n" + s
	}
	if system != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: system})
	}
	for _, e := range history {
		role := llm.RoleUser
		if e.Role == memory.RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: e.Content})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: req.Message})
}

// Generate never returns an error: failures come back inside Result.
func (g *Generator) Generate(ctx context.Context, req Request) Result {
	msgs := g.BuildMessages(req)

	var (
		resp     llm.Response
		attempts int
	)
	op := func() error {
		attempts++
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		r, err := g.client.Generate(callCtx, msgs, g.params)
		if err != nil {
			le := llm.AsError(err)
			if !le.Retryable() || ctx.Err() != nil {
				return backoff.Permanent(le)
			}
			return le
		}
		resp = r
		return nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.retryDelay), uint64(g.retries)),
		ctx,
	)
	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		g.logger.Warn("llm attempt failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		le := llm.AsError(err)
		g.logger.Error("llm generation failed",
			zap.String("kind", string(le.Kind)),
			zap.Int("status", le.StatusCode),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return Result{Text: FailureText(le), Attempts: attempts, Err: le}
	}

	g.logger.Debug("llm response",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens),
		zap.Int("total_tokens", resp.TotalTokens),
		zap.Int("attempts", attempts))
	return Result{
		Text:             resp.Content,
		Model:            resp.Model,
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
		TotalTokens:      resp.TotalTokens,
		Attempts:         attempts,
	}
}

// FailureText is the reply shown to the user when generation fails.
func FailureText(e *llm.Error) string {
	var what string
	switch e.Kind {
	case llm.KindTimeout:
		what = "The model took too long to answer"
	case llm.KindStatus:
		what = fmt.Sprintf("The model service returned an error (HTTP %d)", e.StatusCode)
	case llm.KindEmpty:
		what = "The model returned an empty answer"
	default:
		what = "Could not reach the model service"
	}
	return fmt.Sprintf("❌ %s: %s\n\nPlease try again a bit later.", what, e.Detail)
}
