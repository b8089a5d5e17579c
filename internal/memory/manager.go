package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type userState struct {
	profile UserProfile
	history []HistoryEntry
}

// Manager is the in-process Store. All methods are safe for concurrent use
// and return copies, never internal slices.
type Manager struct {
	mu    sync.RWMutex
	users map[int64]*userState
	now   func() time.Time
}

func NewManager() *Manager {
	return &Manager{users: make(map[int64]*userState), now: time.Now}
}

// EnsureUser creates the profile and an empty progress tracker on first
// contact. It reports whether a new profile was created.
func (m *Manager) EnsureUser(userID int64, displayName, username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; ok {
		return false
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = DefaultDisplayName
	}
	m.users[userID] = &userState{
		profile: UserProfile{
			UserID:      userID,
			DisplayName: displayName,
			Username:    username,
			CreatedAt:   m.now().UTC(),
			Progress:    newProgress(),
		},
	}
	return true
}

func (m *Manager) RecordTurn(userID int64, role Role, content, topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("record %s turn for %d: %w", role, userID, ErrUnknownUser)
	}
	st.history = appendCapped(st.history, HistoryEntry{
		Timestamp: m.now().UTC(),
		Role:      role,
		Content:   truncate(content, ContentLimit),
		Topic:     topic,
	}, MaxHistory)
	return nil
}

func (m *Manager) RegisterInteraction(userID int64, question, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.users[userID]
	if !ok {
		return
	}
	p := &st.profile
	p.TotalInteractions++
	p.RecentQuestions = appendCapped(p.RecentQuestions, truncate(question, QuestionLimit), MaxRecentQuestions)
	if topic == "" {
		return
	}
	if !contains(p.TopicsExplored, topic) {
		p.TopicsExplored = appendCapped(p.TopicsExplored, topic, MaxTopics)
	}
	advance(p.Progress, topic)
}

// BuildContextSummary renders the prompt block describing the user.
func (m *Manager) BuildContextSummary(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.users[userID]
	if !ok {
		return ""
	}
	p := st.profile

	topics := "New user"
	if len(p.TopicsExplored) > 0 {
		topics = strings.Join(lastN(p.TopicsExplored, 5), ", ")
	}
	questions := "None"
	if len(p.RecentQuestions) > 0 {
		questions = strings.Join(quoteAll(lastN(p.RecentQuestions, 2)), ", ")
	}

	var b strings.Builder
	b.WriteString("\n**User Context:**\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.DisplayName)
	fmt.Fprintf(&b, "- Total Interactions: %d\n", p.TotalInteractions)
	fmt.Fprintf(&b, "- Topics: %s\n", topics)
	fmt.Fprintf(&b, "- Recent Questions: %s\n", questions)
	return b.String()
}

func (m *Manager) RecentHistory(userID int64) []HistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.users[userID]
	if !ok {
		return nil
	}
	out := make([]HistoryEntry, len(st.history))
	copy(out, st.history)
	return out
}

// ResetHistory empties the history; the profile and progress survive.
func (m *Manager) ResetHistory(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.users[userID]; ok {
		st.history = nil
	}
}

func (m *Manager) Profile(userID int64) (UserProfile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.users[userID]
	if !ok {
		return UserProfile{}, false
	}
	p := st.profile
	p.TopicsExplored = append([]string(nil), p.TopicsExplored...)
	p.RecentQuestions = append([]string(nil), p.RecentQuestions...)
	p.Progress = make(map[string]int, len(st.profile.Progress))
	for k, v := range st.profile.Progress {
		p.Progress[k] = v
	}
	return p, true
}

func (m *Manager) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// appendCapped appends v and drops the oldest elements beyond limit.
func appendCapped[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if len(s) > limit {
		s = append(s[:0:0], s[len(s)-limit:]...)
	}
	return s
}

func lastN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func quoteAll(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
