// Package models defines the domain types for rixa.
package models

import "time"

// Article is one markdown file from the content directory with its derived
// metadata. Content holds the body with frontmatter stripped.
type Article struct {
	ID           int       `json:"id"`
	Path         string    `json:"path"`
	Title        string    `json:"title"`
	DisplayTitle string    `json:"displayTitle"`
	Excerpt      string    `json:"excerpt,omitempty"`
	Content      string    `json:"content,omitempty"`
	Category     string    `json:"category"`
	ReadTime     string    `json:"readTime"`
	Date         string    `json:"date,omitempty"`
	Image        string    `json:"image"`
	Language     string    `json:"language"`
	Tags         []string  `json:"tags"`
	Checksum     string    `json:"checksum"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary returns a copy of a without its body, for list responses.
func (a Article) Summary() Article {
	a.Content = ""
	return a
}

// ArticleMetadata is a lightweight representation returned by list operations.
type ArticleMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NodeType distinguishes folders from files in the content tree.
type NodeType string

// Node types.
const (
	NodeFolder NodeType = "folder"
	NodeFile   NodeType = "file"
)

// FolderNode is one entry of the content tree. ArticleID is set for files,
// Children for folders.
type FolderNode struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Type      NodeType      `json:"type"`
	ArticleID int           `json:"articleId,omitempty"`
	Children  []*FolderNode `json:"children,omitempty"`
}
