package wizard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/resumeai/internal/wizard"
)

func defaultMatcher() *wizard.Matcher {
	return wizard.NewMatcher(wizard.MustDefaultContent().Keywords)
}

func TestDetectKeywords(t *testing.T) {
	m := defaultMatcher()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "sample job description",
			text: "We need React, Node.js, and AWS experience",
			want: []string{"React", "Node.js", "AWS"},
		},
		{
			name: "case insensitive with punctuation",
			text: "(docker) graphql. KUBERNETES typescript!",
			want: []string{"TypeScript", "Docker", "GraphQL"},
		},
		{
			name: "partial token longer than three characters",
			text: "Experience with Micro frontends and REST",
			want: []string{"RESTful APIs", "Microservices"},
		},
		{
			name: "short partial tokens do not match",
			text: "no ci or cd or aw here",
			want: []string{},
		},
		{
			name: "slashes and dashes stay inside tokens",
			text: "CI/CD and problem-solving",
			want: []string{"CI/CD", "Problem-solving"},
		},
		{
			name: "duplicates collapse",
			text: "React react REACT, React.",
			want: []string{"React"},
		},
		{
			name: "empty",
			text: "   ",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Detect(tt.text))
		})
	}
}

func TestDetectedKeywordsAreCatalogEntries(t *testing.T) {
	m := defaultMatcher()
	catalog := m.Catalog()

	inputs := []string{
		"Senior engineer: Leadership, Agile ceremonies, AWS Lambda, Docker-compose, node.js",
		"lead ship type script serv",
		"Ⅻ ✓ 🚀 React🚀",
		strings.Repeat("microservices ", 50),
	}
	for _, in := range inputs {
		got := m.Detect(in)
		assert.Subset(t, catalog, got, in)

		seen := map[string]bool{}
		for _, k := range got {
			assert.False(t, seen[k], "duplicate %q", k)
			seen[k] = true
		}
	}
}

func TestDetectExcludesShortNonKeywords(t *testing.T) {
	got := defaultMatcher().Detect("We need React, Node.js, and AWS experience")

	assert.NotContains(t, got, "We")
	assert.NotContains(t, got, "and")
	assert.NotContains(t, got, "need")
}

func TestHighlightRoundTrips(t *testing.T) {
	m := defaultMatcher()
	text := "  Ship React\tapps with  Docker.\n"

	segs := m.Highlight(text)

	var b strings.Builder
	var keywords []string
	for _, s := range segs {
		b.WriteString(s.Text)
		if s.Keyword {
			keywords = append(keywords, s.Text)
		}
	}
	assert.Equal(t, text, b.String())
	assert.Equal(t, []string{"Ship", "React", "Docker."}, keywords)
}

func TestHighlightEmpty(t *testing.T) {
	assert.Empty(t, defaultMatcher().Highlight(""))
}
