// Package memory keeps per-user conversation state in process memory: a
// profile with interaction counters, a naive topic list, learning progress
// and a capped rolling history of turns. Nothing here is persisted.
package memory

import (
	"errors"
	"time"
)

const (
	MaxHistory         = 50
	MaxRecentQuestions = 10
	MaxTopics          = 50

	ContentLimit  = 300
	QuestionLimit = 50

	DefaultDisplayName = "Friend"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrUnknownUser is returned when a turn is recorded for a user that was
// never registered with EnsureUser.
var ErrUnknownUser = errors.New("memory: unknown user")

type UserProfile struct {
	UserID            int64
	DisplayName       string
	Username          string
	CreatedAt         time.Time
	TotalInteractions int
	TopicsExplored    []string
	RecentQuestions   []string
	Progress          map[string]int
}

type HistoryEntry struct {
	Timestamp time.Time
	Role      Role
	Content   string
	Topic     string
}

// Store is the capability the dispatcher depends on.
type Store interface {
	EnsureUser(userID int64, displayName, username string) bool
	RecordTurn(userID int64, role Role, content, topic string) error
	RegisterInteraction(userID int64, question, topic string)
	BuildContextSummary(userID int64) string
	RecentHistory(userID int64) []HistoryEntry
	ResetHistory(userID int64)
	Profile(userID int64) (UserProfile, bool)
	UserCount() int
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
