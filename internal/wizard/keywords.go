package wizard

import (
	"strings"
	"unicode"
)

// minPartialLen is the token length a partial (substring) match must exceed.
const minPartialLen = 3

// Matcher detects catalog keywords in free text.
//
// A token is a whitespace-delimited word with leading and trailing
// punctuation trimmed (letters, digits, '+' and '#' are kept), lowercased.
// A catalog entry matches when a token equals it, or when a token longer
// than three characters is contained in it. Detection and highlighting use
// the same rule.
type Matcher struct {
	catalog []string
	lower   []string
}

func NewMatcher(catalog []string) *Matcher {
	m := &Matcher{
		catalog: make([]string, len(catalog)),
		lower:   make([]string, len(catalog)),
	}
	copy(m.catalog, catalog)
	for i, k := range catalog {
		m.lower[i] = strings.ToLower(k)
	}
	return m
}

// Catalog returns a copy of the keyword catalog.
func (m *Matcher) Catalog() []string {
	out := make([]string, len(m.catalog))
	copy(out, m.catalog)
	return out
}

// Detect returns the catalog entries matched by text, in catalog order and
// without duplicates. The result is never nil.
func (m *Matcher) Detect(text string) []string {
	hit := make([]bool, len(m.catalog))
	for _, field := range strings.Fields(text) {
		tok := normalizeToken(field)
		if tok == "" {
			continue
		}
		for i := range m.lower {
			if !hit[i] && m.tokenMatches(tok, i) {
				hit[i] = true
			}
		}
	}

	out := make([]string, 0, len(m.catalog))
	for i, ok := range hit {
		if ok {
			out = append(out, m.catalog[i])
		}
	}
	return out
}

// Segment is a piece of highlighted text.
type Segment struct {
	Text    string `json:"text"`
	Keyword bool   `json:"keyword"`
}

// Highlight splits text into alternating word and whitespace segments and
// flags the words that match the catalog. Concatenating the segment texts
// gives back the input.
func (m *Matcher) Highlight(text string) []Segment {
	var segs []Segment
	start := 0
	inSpace := false
	flush := func(end int) {
		if end <= start {
			return
		}
		piece := text[start:end]
		seg := Segment{Text: piece}
		if !inSpace {
			seg.Keyword = m.matchesAny(normalizeToken(piece))
		}
		segs = append(segs, seg)
		start = end
	}

	for i, r := range text {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			flush(i)
			inSpace = space
		}
	}
	flush(len(text))
	return segs
}

func (m *Matcher) matchesAny(tok string) bool {
	if tok == "" {
		return false
	}
	for i := range m.lower {
		if m.tokenMatches(tok, i) {
			return true
		}
	}
	return false
}

func (m *Matcher) tokenMatches(tok string, i int) bool {
	kw := m.lower[i]
	if tok == kw {
		return true
	}
	return len([]rune(tok)) > minPartialLen && strings.Contains(kw, tok)
}

func normalizeToken(s string) string {
	trimmed := strings.TrimFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#')
	})
	return strings.ToLower(trimmed)
}
