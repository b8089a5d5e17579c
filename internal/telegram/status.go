package telegram

import (
	"fmt"
	"strings"

	"ai-mentor/internal/memory"
)

var areaLabels = map[string]string{
	memory.AreaPython:     "Python",
	memory.AreaJavaScript: "JavaScript",
	memory.AreaAPIs:       "APIs",
	memory.AreaDatabases:  "Databases",
	memory.AreaDeployment: "Deployment",
}

const (
	statusTopics    = 10
	statusQuestions = 5
)

func formatStatus(p memory.UserProfile) string {
	var b strings.Builder
	b.WriteString("📊 Your AI Mentor status\n\n")
	fmt.Fprintf(&b, "👤 User: %s\n", p.DisplayName)
	fmt.Fprintf(&b, "📅 Member since: %s\n", p.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "💬 Total interactions: %d\n\n", p.TotalInteractions)

	b.WriteString("📚 Topics explored:\n")
	writeBullets(&b, tail(p.TopicsExplored, statusTopics))

	b.WriteString("\n🎓 Learning progress:\n")
	for _, area := range memory.Areas {
		fmt.Fprintf(&b, "  %s: %d%%\n", areaLabels[area], p.Progress[area])
	}

	b.WriteString("\n💡 Recent questions:\n")
	writeBullets(&b, tail(p.RecentQuestions, statusQuestions))

	b.WriteString("\n🎯 Keep learning! Ask anything for a detailed explanation.")
	return b.String()
}

func writeBullets(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("  • None yet\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "  • %s\n", it)
	}
}

func tail(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
