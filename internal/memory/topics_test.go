package memory

import "testing"

func TestDetectTopic(t *testing.T) {
	cases := map[string]string{
		"Explain REST APIs":                          AreaAPIs,
		"How do I write a FastAPI app in Python?":    AreaPython,
		"react hooks vs vue":                         AreaJavaScript,
		"postgres index on a SQL query":              AreaDatabases,
		"deploying with docker on render":            AreaDeployment,
		"tell me a joke":                             "",
		"python or javascript?":                      AreaPython,
		"SQL schema for my REST API, sql only please": AreaDatabases,
	}
	for in, want := range cases {
		if got := DetectTopic(in); got != want {
			t.Errorf("DetectTopic(%q) = %q, want %q", in, got, want)
		}
	}
}
