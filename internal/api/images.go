package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

const imagesDir = "images"

// ImageHandler serves article cover images from the content directory.
type ImageHandler struct {
	contentRoot string
}

// NewImageHandler creates a handler rooted at the content directory.
func NewImageHandler(contentRoot string) *ImageHandler {
	return &ImageHandler{contentRoot: contentRoot}
}

func (h *ImageHandler) imagesPath() string {
	return filepath.Join(h.contentRoot, imagesDir)
}

// safeName accepts a plain file name and returns its absolute path under the
// images directory.
func (h *ImageHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.imagesPath(), cleaned)
	if !strings.HasPrefix(abs, h.imagesPath()+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes images directory")
	}
	return abs, nil
}

// ServeFile handles GET /images/{filename}.
func (h *ImageHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.safeName(chi.URLParam(r, "filename"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
