package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"ai-mentor/internal/storage"
)

// DailyStats aggregates one calendar day of interactions.
type DailyStats struct {
	Date           string              `json:"date"`
	TotalMessages  int                 `json:"total_messages"`
	UniqueUsers    int                 `json:"unique_users"`
	Failures       int                 `json:"failures"`
	FailuresByKind map[string]int      `json:"failures_by_kind"`
	TopicsByArea   map[string]int      `json:"topics_by_area"`
	UserStats      map[int64]UserStats `json:"user_stats"`
}

type UserStats struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Messages int    `json:"messages"`
	Failures int    `json:"failures"`
}

// AnalyzeDailyLogs counts events in [day start, day start + 24h) of
// targetDate's location. Events without a user message are ignored.
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:           startOfDay.Format("2006-01-02"),
		FailuresByKind: make(map[string]int),
		TopicsByArea:   make(map[string]int),
		UserStats:      make(map[int64]UserStats),
	}

	for _, event := range events {
		if event.Timestamp.Before(startOfDay) || !event.Timestamp.Before(endOfDay) {
			continue
		}
		if event.UserMessage == "" {
			continue
		}

		stats.TotalMessages++
		us, ok := stats.UserStats[event.UserID]
		if !ok {
			us = UserStats{UserID: event.UserID}
		}
		if event.Username != "" {
			us.Username = event.Username
		}
		us.Messages++
		if event.Failure != "" {
			stats.Failures++
			stats.FailuresByKind[event.Failure]++
			us.Failures++
		}
		if event.Topic != "" {
			stats.TopicsByArea[event.Topic]++
		}
		stats.UserStats[event.UserID] = us
	}

	stats.UniqueUsers = len(stats.UserStats)
	return stats
}

// GenerateReportSummary renders the stats as a short text report.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 AI Mentor daily report for %s\n\n", ds.Date)
	fmt.Fprintf(&b, "- Messages: %d\n", ds.TotalMessages)
	fmt.Fprintf(&b, "- Unique users: %d\n", ds.UniqueUsers)
	fmt.Fprintf(&b, "- Failed replies: %d\n", ds.Failures)

	if len(ds.FailuresByKind) > 0 {
		b.WriteString("\nFailures by kind:\n")
		for _, k := range sortedKeys(ds.FailuresByKind) {
			fmt.Fprintf(&b, "- %s: %d\n", k, ds.FailuresByKind[k])
		}
	}
	if len(ds.TopicsByArea) > 0 {
		b.WriteString("\nTopics:\n")
		for _, k := range sortedKeys(ds.TopicsByArea) {
			fmt.Fprintf(&b, "- %s: %d\n", k, ds.TopicsByArea[k])
		}
	}

	if len(ds.UserStats) > 0 {
		ids := make([]int64, 0, len(ds.UserStats))
		for id := range ds.UserStats {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		fmt.Fprintf(&b, "\nUsers (%d):\n", len(ids))
		for _, id := range ids {
			us := ds.UserStats[id]
			name := fmt.Sprintf("User %d", id)
			if us.Username != "" {
				name += " (@" + us.Username + ")"
			}
			fmt.Fprintf(&b, "- %s: %d messages", name, us.Messages)
			if us.Failures > 0 {
				fmt.Fprintf(&b, ", %d failed", us.Failures)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
