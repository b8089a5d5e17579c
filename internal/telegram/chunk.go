package telegram

import "strings"

// MaxMessageLength is the chunk size used for replies; Telegram rejects
// messages above 4096 characters.
const MaxMessageLength = 4000

// SplitMessage cuts text into chunks of at most limit runes. A chunk ends
// after the last newline inside the window when there is one in its second
// half; otherwise the cut is hard. Joining the chunks yields text exactly.
func SplitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		limit = MaxMessageLength
	}
	runes := []rune(text)
	var chunks []string
	for len(runes) > limit {
		cut := limit
		if i := lastIndexRune(runes[:limit], '\n'); i >= limit/2 {
			cut = i + 1
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func lastIndexRune(rs []rune, r rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == r {
			return i
		}
	}
	return -1
}

// summarize shortens a question for the broadcast channel.
func summarize(text string, n int) string {
	text = strings.TrimSpace(text)
	rs := []rune(text)
	if len(rs) <= n {
		return text
	}
	return string(rs[:n]) + "..."
}
