// Package web serves the built single-page site from the dist directory.
package web

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
)

const indexFile = "index.html"

// Handler serves static files and falls back to index.html so client-side
// routes resolve. The directory is consulted on every request, so a build
// that appears after startup is picked up.
type Handler struct {
	fsys   fs.FS
	files  http.Handler
	logger *slog.Logger
}

// NewHandler creates a Handler over the dist directory at dir.
func NewHandler(dir string, logger *slog.Logger) *Handler {
	return NewHandlerFS(os.DirFS(dir), logger)
}

// NewHandlerFS creates a Handler over fsys.
func NewHandlerFS(fsys fs.FS, logger *slog.Logger) *Handler {
	return &Handler{
		fsys:   fsys,
		files:  http.FileServerFS(fsys),
		logger: logger,
	}
}

// ServeHTTP serves GET and HEAD only. Anything else is 404.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" && name != indexFile && h.isFile(name) {
		h.files.ServeHTTP(w, r)
		return
	}

	if !h.isFile(indexFile) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Not built yet."))
		return
	}

	http.ServeFileFS(w, r, h.fsys, indexFile)
}

func (h *Handler) isFile(name string) bool {
	info, err := fs.Stat(h.fsys, name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("stat dist file", "name", name, "error", err)
		}
		return false
	}
	return !info.IsDir()
}
