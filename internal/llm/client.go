package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Params are fixed per deployment and never set per request.
type Params struct {
	MaxTokens   int
	Temperature float32
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is a single completion backend. Implementations return *Error for
// every failure.
type Client interface {
	Generate(ctx context.Context, messages []Message, params Params) (Response, error)
}

// splitSystem joins all system messages into one instruction block and
// returns the remaining turns in order.
func splitSystem(messages []Message) (string, []Message) {
	var system string
	turns := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
