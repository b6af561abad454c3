package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/otpstudio/studio-server-go/internal/config"
)

// SPAHandler serves the marketing site and admin UI. HTML is never cached
// so deploys take effect immediately; everything else gets a one-day
// cache.
type SPAHandler struct {
	staticDir string
	indexFile string
}

func NewSPAHandler(staticDir string) *SPAHandler {
	return &SPAHandler{
		staticDir: staticDir,
		indexFile: "index.html",
	}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	if path == "" {
		path = "/"
	}

	if strings.HasPrefix(path, "api/") {
		http.NotFound(w, r)
		return
	}

	filePath := filepath.Join(h.staticDir, path)

	info, err := os.Stat(filePath)
	if err == nil && !info.IsDir() {
		setCacheHeaders(w, filePath)
		http.ServeFile(w, r, filePath)
		return
	}

	indexPath := filepath.Join(h.staticDir, h.indexFile)
	if _, err := os.Stat(indexPath); err != nil {
		http.NotFound(w, r)
		return
	}

	setCacheHeaders(w, indexPath)
	http.ServeFile(w, r, indexPath)
}

func setCacheHeaders(w http.ResponseWriter, filePath string) {
	if strings.HasSuffix(filePath, ".html") {
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")
		return
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", config.AssetCacheMaxAge))
}

func StaticFileServer(staticDir string) http.Handler {
	return NewSPAHandler(staticDir)
}
