// Package search ranks article records against free-text queries.
//
// An Index is built in full from an ordered slice of items and answers
// queries synchronously. Scoring follows the usual weighted-field model:
// every field is scored on a 0 (exact) to 1 (no match) scale, fields above
// the threshold are ignored, and the remaining field scores are combined with
// per-key weights and a field-length norm. Match location inside a field
// never matters.
package search

// Record is the searchable projection of one article.
type Record struct {
	DisplayTitle string
	Title        string
	Category     string
	Body         string
	Tags         []string
}

// Field names.
const (
	FieldDisplayTitle = "displayTitle"
	FieldTitle        = "title"
	FieldCategory     = "category"
	FieldBody         = "body"
	FieldTags         = "tags"
)

// Key weights one record field.
type Key struct {
	Name   string
	Weight float64
}

// DefaultKeys are the article field weights.
var DefaultKeys = []Key{
	{Name: FieldDisplayTitle, Weight: 0.4},
	{Name: FieldTitle, Weight: 0.3},
	{Name: FieldCategory, Weight: 0.15},
	{Name: FieldBody, Weight: 0.1},
	{Name: FieldTags, Weight: 0.05},
}

// Defaults for Options.
const (
	DefaultThreshold = 0.4
	DefaultLimit     = 8
)

// Options tunes an Index.
type Options struct {
	Keys []Key
	// Threshold is the worst field score that still counts as a match.
	Threshold float64
	// Limit bounds every query result.
	Limit int
}

// DefaultOptions returns the article search configuration.
func DefaultOptions() Options {
	return Options{Keys: DefaultKeys, Threshold: DefaultThreshold, Limit: DefaultLimit}
}

func (o Options) withDefaults() Options {
	if len(o.Keys) == 0 {
		o.Keys = DefaultKeys
	}
	if o.Threshold <= 0 || o.Threshold > 1 {
		o.Threshold = DefaultThreshold
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

func (r Record) field(name string) []string {
	switch name {
	case FieldDisplayTitle:
		return []string{r.DisplayTitle}
	case FieldTitle:
		return []string{r.Title}
	case FieldCategory:
		return []string{r.Category}
	case FieldBody:
		return []string{r.Body}
	case FieldTags:
		return r.Tags
	default:
		return nil
	}
}
