package application

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// frontMatterPattern matches "---\n<meta>\n---\n<body>" anchored at both ends.
var frontMatterPattern = regexp.MustCompile(`^---\n([\s\S]*?)\n---\n([\s\S]*)$`)

// FrontMatter is the metadata block written at the top of a post.
type FrontMatter struct {
	Title    string `yaml:"title" json:"title,omitempty"`
	Date     string `yaml:"date" json:"date,omitempty"`
	Time     string `yaml:"time" json:"time,omitempty"`
	Created  string `yaml:"created" json:"created,omitempty"`
	Updated  string `yaml:"updated" json:"updated,omitempty"`
	Category string `yaml:"category" json:"category,omitempty"`
	Summary  string `yaml:"summary" json:"summary,omitempty"`
	Tags     any    `yaml:"tags" json:"-"`
}

// TagList returns the normalized tags of the block.
func (fm FrontMatter) TagList() []string {
	return NormalizeTags(fm.Tags)
}

func splitFrontMatter(raw string) (meta string, body string, ok bool) {
	m := frontMatterPattern.FindStringSubmatch(strings.ReplaceAll(raw, "\r\n", "\n"))
	if m == nil {
		return "", raw, false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// ExtractBody strips a leading front matter block.
// Input without a complete block (including an unclosed one) is returned unchanged.
func ExtractBody(raw string) string {
	_, body, _ := splitFrontMatter(raw)
	return body
}

// ParseFrontMatter decodes the leading front matter block of raw.
// A missing or undecodable block yields an empty FrontMatter and false.
func ParseFrontMatter(raw string) (FrontMatter, bool) {
	meta, _, ok := splitFrontMatter(raw)
	if !ok {
		return FrontMatter{}, false
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		log.Debug().Err(err).Msg("Ignoring undecodable front matter")
		return FrontMatter{}, false
	}
	return fm, true
}

type composedFrontMatter struct {
	Title    string   `yaml:"title"`
	Date     string   `yaml:"date,omitempty"`
	Time     string   `yaml:"time,omitempty"`
	Summary  string   `yaml:"summary"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
}

// ComposeFrontMatter renders the block the editor writes ahead of a post body.
func ComposeFrontMatter(fm FrontMatter, tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}

	var b strings.Builder
	b.WriteString("---\n")
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	err := enc.Encode(composedFrontMatter{
		Title:    fm.Title,
		Date:     fm.Date,
		Time:     fm.Time,
		Summary:  fm.Summary,
		Category: fm.Category,
		Tags:     tags,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	b.WriteString("---\n")
	return b.String(), nil
}
