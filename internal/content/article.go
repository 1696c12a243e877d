package content

import (
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/rixa/internal/models"
)

// Article defaults.
const (
	DefaultCategory = "uncategorized"
	DefaultImage    = "/images/default.jpg"
	DefaultLanguage = "markdown"

	excerptLimit = 150
)

var extensionLanguages = map[string]string{
	"md":   "markdown",
	"rs":   "rust",
	"tsx":  "typescript",
	"ts":   "typescript",
	"go":   "go",
	"sh":   "bash",
	"ps1":  "powershell",
	"zsh":  "zsh",
	"json": "json",
	"js":   "javascript",
	"py":   "python",
}

// BuildArticle derives an article from the raw bytes of the file at relPath
// (forward slashes, relative to the content root).
func BuildArticle(relPath string, data []byte, id int, updatedAt time.Time) (models.Article, error) {
	fm, body := ParseFrontmatter(data)

	dir, filename := path.Split(relPath)
	category := DefaultCategory
	if folders := strings.Split(strings.Trim(dir, "/"), "/"); folders[0] != "" {
		category = folders[0]
	}

	a := models.Article{
		ID:           id,
		Path:         relPath,
		Title:        filename,
		DisplayTitle: firstNonEmpty(fm.Title, DisplayTitle(filename)),
		Excerpt:      firstNonEmpty(fm.Subtitle, fm.Description, fm.Excerpt, bodyExcerpt(body)),
		Content:      body,
		Category:     category,
		ReadTime:     fm.ReadTime,
		Date:         fm.Date,
		Image:        firstNonEmpty(fm.Image, DefaultImage),
		Language:     LanguageFromPath(filename),
		Tags:         []string(fm.Tags),
		Checksum:     Checksum(data),
		UpdatedAt:    updatedAt,
	}
	if a.ReadTime == "" {
		a.ReadTime = EstimateReadTime(body)
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}

	err := validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required, validation.Min(1)),
		validation.Field(&a.Path, validation.Required),
		validation.Field(&a.Title, validation.Required),
		validation.Field(&a.Category, validation.Required),
	)
	return a, err
}

// DisplayTitle turns a file name into a readable title: the .md suffix is
// dropped and each dash-separated word is capitalized.
func DisplayTitle(filename string) string {
	words := strings.Split(strings.TrimSuffix(filename, ".md"), "-")
	for i, w := range words {
		if r, size := utf8.DecodeRuneInString(w); size > 0 {
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}

// LanguageFromPath maps a file extension to a language name, defaulting to
// markdown.
func LanguageFromPath(p string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	return DefaultLanguage
}

// bodyExcerpt returns the first non-blank line that is not a heading,
// truncated to excerptLimit characters.
func bodyExcerpt(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimRight(line, "\r")
		if r := []rune(line); len(r) > excerptLimit {
			line = string(r[:excerptLimit])
		}
		return line
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
