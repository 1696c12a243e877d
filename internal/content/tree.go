package content

import (
	"sort"
	"strings"

	"github.com/starford/rixa/internal/models"
)

// Tree root.
const (
	RootID   = "root"
	RootName = "RIXA-GUIDE"
)

// BuildTree mirrors the article paths as a folder tree under a single root.
// Folders sort before files; siblings sort by name.
func BuildTree(articles []models.Article) []*models.FolderNode {
	root := &models.FolderNode{ID: RootID, Name: RootName, Type: models.NodeFolder}
	folders := map[string]*models.FolderNode{RootID: root}

	for _, a := range articles {
		segments := strings.Split(a.Path, "/")
		filename := segments[len(segments)-1]

		parent, parentID := root, RootID
		for _, seg := range segments[:len(segments)-1] {
			if seg == "" {
				continue
			}
			id := parentID + "/" + seg
			node, ok := folders[id]
			if !ok {
				node = &models.FolderNode{ID: id, Name: seg, Type: models.NodeFolder}
				folders[id] = node
				parent.Children = append(parent.Children, node)
			}
			parent, parentID = node, id
		}

		parent.Children = append(parent.Children, &models.FolderNode{
			ID:        "file:" + a.Path,
			Name:      filename,
			Type:      models.NodeFile,
			ArticleID: a.ID,
		})
	}

	sortTree(root)
	return []*models.FolderNode{root}
}

func sortTree(node *models.FolderNode) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.Type != b.Type {
			return a.Type == models.NodeFolder
		}
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})
	for _, c := range node.Children {
		if c.Type == models.NodeFolder {
			sortTree(c)
		}
	}
}
