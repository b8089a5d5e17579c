package telegram

import (
	"strings"
	"testing"
)

func TestSplitMessage(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		limit  int
		chunks int
	}{
		{"empty", "", 10, 0},
		{"short", "hello", 10, 1},
		{"exact", strings.Repeat("a", 10), 10, 1},
		{"hard cut", strings.Repeat("a", 25), 10, 3},
		{"multibyte", strings.Repeat("日本", 12), 10, 3},
		{"newline preferred", "aaaaaaa\nbbbbbbbbb", 10, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitMessage(tc.text, tc.limit)
			if len(got) != tc.chunks {
				t.Fatalf("want %d chunks, got %d: %q", tc.chunks, len(got), got)
			}
			if strings.Join(got, "") != tc.text {
				t.Fatalf("concatenation mismatch: %q", got)
			}
			for _, c := range got {
				if n := len([]rune(c)); n > tc.limit || n == 0 {
					t.Fatalf("chunk of %d runes: %q", n, c)
				}
			}
		})
	}
}

func TestSplitMessage_CutsAfterNewline(t *testing.T) {
	got := SplitMessage("aaaaaaa\nbbbbbbbbb", 10)
	if got[0] != "aaaaaaa\n" {
		t.Fatalf("first chunk %q", got[0])
	}
}

func TestSplitMessage_DefaultLimit(t *testing.T) {
	got := SplitMessage(strings.Repeat("x", MaxMessageLength+1), 0)
	if len(got) != 2 || len([]rune(got[0])) != MaxMessageLength {
		t.Fatalf("unexpected split: %d chunks", len(got))
	}
}

func TestSummarize(t *testing.T) {
	if got := summarize("short", 50); got != "short" {
		t.Fatalf("got %q", got)
	}
	long := strings.Repeat("я", 60)
	if got := summarize(long, 50); got != strings.Repeat("я", 50)+"..." {
		t.Fatalf("got %q", got)
	}
}
