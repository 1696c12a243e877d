package content

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"
)

// Frontmatter is the metadata block at the top of an article.
type Frontmatter struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Description string `yaml:"description"`
	Excerpt     string `yaml:"excerpt"`
	ReadTime    string `yaml:"readTime"`
	Date        string `yaml:"date"`
	Image       string `yaml:"image"`
	Tags        Tags   `yaml:"tags"`
}

// Tags accepts either a YAML list or a comma-separated string.
type Tags []string

// UnmarshalYAML implements the yaml unmarshaler used by the frontmatter
// decoder.
func (t *Tags) UnmarshalYAML(unmarshal func(any) error) error {
	var list []string
	if err := unmarshal(&list); err == nil {
		*t = cleanTags(list)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*t = cleanTags(strings.Split(s, ","))
	return nil
}

func cleanTags(raw []string) Tags {
	out := make(Tags, 0, len(raw))
	for _, tag := range raw {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// ParseFrontmatter splits data into its frontmatter and body. Input without
// a closed "---" block is all body. When the block is not valid YAML, as in
// "title: Rust: The Hard Parts", each line is read as key: value split at
// the first colon. It never fails.
func ParseFrontmatter(data []byte) (Frontmatter, string) {
	var fm Frontmatter
	rest, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err == nil {
		return fm, strings.TrimLeft(string(rest), "\r\n")
	}

	block, body, ok := splitFrontmatter(string(data))
	if !ok {
		return Frontmatter{}, string(data)
	}
	return parseLines(block), strings.TrimLeft(body, "\r\n")
}

// splitFrontmatter cuts a leading "---" delimited block off text.
func splitFrontmatter(text string) (block, body string, ok bool) {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", "", false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], ""), strings.Join(lines[i+1:], ""), true
		}
	}
	return "", "", false
}

func parseLines(block string) Frontmatter {
	var fm Frontmatter
	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "title":
			fm.Title = value
		case "subtitle":
			fm.Subtitle = value
		case "description":
			fm.Description = value
		case "excerpt":
			fm.Excerpt = value
		case "readTime":
			fm.ReadTime = value
		case "date":
			fm.Date = value
		case "image":
			fm.Image = value
		case "tags":
			fm.Tags = cleanTags(strings.Split(strings.Trim(value, "[]"), ","))
		}
	}
	return fm
}
