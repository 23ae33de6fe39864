package server

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"lanshare/internal/store"
)

// handleCatalog renders the catalog page: every shared file, folder and
// text with its download/copy affordances and the upload forms.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request, _ string) {
	files := s.store.Files()
	texts := s.store.Texts()

	data := catalogData{Files: make([]catalogFile, 0, len(files)), Texts: make([]catalogText, 0, len(texts))}
	for _, e := range files {
		data.Files = append(data.Files, catalogFile{
			Name:     e.Name,
			Href:     "/file/" + escapePath(e.Name),
			IsFolder: e.Kind == store.KindFolder,
			Uploader: e.Uploader,
		})
	}
	for i, t := range texts {
		data.Texts = append(data.Texts, catalogText{
			Index:    i,
			Preview:  preview(t.Content, 30),
			Uploader: t.Uploader,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := catalogTmpl.Execute(w, data); err != nil {
		log.Printf("rid=%s msg=%q err=%v", RequestIDFromContext(r.Context()), "render_catalog", err)
	}
}

// handleText returns the raw content of texts[n]. Anything that is not a
// valid in-range index is a 404.
func (s *Server) handleText(w http.ResponseWriter, r *http.Request, rest string) {
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		http.Error(w, "text not found", http.StatusNotFound)
		return
	}
	content, ok := s.store.TextContent(n)
	if !ok {
		http.Error(w, "text not found", http.StatusNotFound)
		return
	}
	s.metrics.RecordTextServed()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, content)
}

// handleFile resolves the relative path against the catalog and either
// streams a file download or renders a directory listing.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request, rest string) {
	abs, err := resolveShared(s.store, rest)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	info, err := os.Stat(abs)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	if info.IsDir() {
		s.serveListing(w, r, abs)
		return
	}
	s.serveDownload(w, r, abs, info.Size())
}

// serveDownload streams one file as an attachment.
func (s *Server) serveDownload(w http.ResponseWriter, r *http.Request, abs string, size int64) {
	f, err := os.Open(abs)
	if err != nil {
		rid := RequestIDFromContext(r.Context())
		log.Printf("rid=%s msg=%q path=%s err=%v", rid, "open_failed", abs, err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	filename := filepath.Base(abs)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, f)
	if err != nil {
		// Peer gone mid-transfer; the connection is abandoned, nothing
		// more to send.
		rid := RequestIDFromContext(r.Context())
		log.Printf("rid=%s msg=%q path=%s err=%v", rid, "download_aborted", abs, err)
		return
	}
	s.metrics.RecordDownload(n)
}

// serveListing renders the immediate children of a resolved directory.
// Child links stay rooted under /file/ so recursion into subdirectories
// resolves through the same folder match.
func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, abs string) {
	entries, err := os.ReadDir(abs)
	if err != nil {
		rid := RequestIDFromContext(r.Context())
		log.Printf("rid=%s msg=%q path=%s err=%v", rid, "readdir_failed", abs, err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	webPath := strings.TrimSuffix(r.URL.Path, "/")
	parent := path.Dir(webPath)
	if parent == "/file" || parent == "." {
		parent = "/"
	}

	data := listingData{
		DirName: filepath.Base(abs),
		Parent:  parent,
	}
	for _, e := range entries {
		data.Items = append(data.Items, listingItem{
			Name:  e.Name(),
			Href:  webPath + "/" + escapePath(e.Name()),
			IsDir: e.IsDir(),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := listingTmpl.Execute(w, data); err != nil {
		log.Printf("rid=%s msg=%q err=%v", RequestIDFromContext(r.Context()), "render_listing", err)
	}
}

// escapePath percent-encodes one catalog name for use in a URL path,
// keeping "/" separators intact for folder entries.
func escapePath(name string) string {
	segs := strings.Split(name, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

// preview truncates text for display, rune-safe.
func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
