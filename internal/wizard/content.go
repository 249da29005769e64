package wizard

import (
	_ "embed"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed content/demo.yaml
var defaultContent []byte

// ResumeVersion is one side of the before/after comparison.
type ResumeVersion struct {
	Title string `yaml:"title" json:"title"`
	Score int    `yaml:"score" json:"score"`
	Text  string `yaml:"text" json:"text"`
}

// Comparison is the canned result shown on the last stage. It is not derived
// from the uploaded document or the job description.
type Comparison struct {
	Original  ResumeVersion `yaml:"original" json:"original"`
	Optimized ResumeVersion `yaml:"optimized" json:"optimized"`
}

// Milestone is a processing step label that counts as done once progress
// passes After. A milestone with After >= 100 is done only at 100.
type Milestone struct {
	Label string  `yaml:"label" json:"label"`
	After float64 `yaml:"after" json:"after"`
}

// Done reports whether the milestone is reached at the given progress.
func (m Milestone) Done(progress float64) bool {
	return progress >= MaxProgress || progress > m.After
}

// Content is the static demo data the controller works against. Treat it as
// read-only after Load.
type Content struct {
	Keywords   []string    `yaml:"keywords"`
	Milestones []Milestone `yaml:"milestones"`
	Comparison Comparison  `yaml:"comparison"`
}

// DefaultContent returns the embedded demo content.
func DefaultContent() (*Content, error) {
	return ParseContent(defaultContent)
}

// MustDefaultContent is DefaultContent for tests and tools. It panics on a
// broken embedded file.
func MustDefaultContent() *Content {
	c, err := DefaultContent()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadContent reads content from path, or the embedded default when path is
// empty.
func LoadContent(path string) (*Content, error) {
	if path == "" {
		return DefaultContent()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read content file %s", path)
	}
	return ParseContent(raw)
}

// ParseContent decodes and validates YAML demo content.
func ParseContent(raw []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrap(err, "decode demo content")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Content) Validate() error {
	if len(c.Keywords) == 0 {
		return errors.New("content: keyword catalog is empty")
	}
	seen := make(map[string]struct{}, len(c.Keywords))
	for _, k := range c.Keywords {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			return errors.New("content: blank keyword in catalog")
		}
		if _, dup := seen[key]; dup {
			return errors.Newf("content: duplicate keyword %q", k)
		}
		seen[key] = struct{}{}
	}

	last := -1.0
	for _, m := range c.Milestones {
		if m.After <= last {
			return errors.Newf("content: milestone %q is out of order", m.Label)
		}
		last = m.After
	}

	for _, v := range []ResumeVersion{c.Comparison.Original, c.Comparison.Optimized} {
		if v.Score < 0 || v.Score > 100 {
			return errors.Newf("content: score %d of %q is outside 0-100", v.Score, v.Title)
		}
	}
	return nil
}
