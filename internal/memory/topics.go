package memory

import (
	"regexp"
	"sort"
)

// Learning areas tracked on every profile.
const (
	AreaPython     = "python"
	AreaJavaScript = "javascript"
	AreaAPIs       = "apis"
	AreaDatabases  = "databases"
	AreaDeployment = "deployment"
)

const (
	progressStep = 5
	progressMax  = 100
)

// Areas lists the tracked areas in display order.
var Areas = []string{AreaPython, AreaJavaScript, AreaAPIs, AreaDatabases, AreaDeployment}

var topicPatterns = map[string]*regexp.Regexp{
	AreaPython:     regexp.MustCompile(`(?i)\b(python|django|flask|fastapi|pandas|pip|pytest)\b`),
	AreaJavaScript: regexp.MustCompile(`(?i)\b(javascript|js|typescript|node(\.?js)?|react|vue|npm)\b`),
	AreaAPIs:       regexp.MustCompile(`(?i)\b(apis?|rest(ful)?|graphql|endpoints?|webhooks?|grpc|http)\b`),
	AreaDatabases:  regexp.MustCompile(`(?i)\b(databases?|sql|postgres(ql)?|mysql|sqlite|mongo(db)?|redis|queries|query|schema)\b`),
	AreaDeployment: regexp.MustCompile(`(?i)\b(deploy(ment|ing)?|docker|kubernetes|k8s|render|heroku|ci/cd|nginx|hosting)\b`),
}

// DetectTopic maps free text onto one tracked area. When several areas
// match, the one with the most keyword hits wins; ties resolve in Areas order.
func DetectTopic(text string) string {
	type hit struct {
		area  string
		count int
		order int
	}
	var hits []hit
	for i, area := range Areas {
		if n := len(topicPatterns[area].FindAllStringIndex(text, -1)); n > 0 {
			hits = append(hits, hit{area: area, count: n, order: i})
		}
	}
	if len(hits) == 0 {
		return ""
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].count != hits[j].count {
			return hits[i].count > hits[j].count
		}
		return hits[i].order < hits[j].order
	})
	return hits[0].area
}

func newProgress() map[string]int {
	p := make(map[string]int, len(Areas))
	for _, a := range Areas {
		p[a] = 0
	}
	return p
}

func advance(p map[string]int, topic string) {
	v, ok := p[topic]
	if !ok {
		return
	}
	v += progressStep
	if v > progressMax {
		v = progressMax
	}
	p[topic] = v
}
