package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"lanshare/internal/store"
)

// maxTextBytes bounds /upload/text bodies. Texts are snippets, not
// documents.
const maxTextBytes = 1 << 20

// uploadFileResp is the JSON body returned after a successful file upload.
type uploadFileResp struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
}

// uploadTextReq is the JSON payload for a text upload.
type uploadTextReq struct {
	Text string `json:"text"`
}

// handleUploadFile accepts a multipart body with a single "file" field,
// stores it under the upload directory and appends a catalog entry tagged
// with the uploader's address.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request, _ string) {
	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "bad request: expecting multipart/form-data", http.StatusBadRequest)
		return
	}

	var filePart *multipartFilePart
	for {
		part, perr := mr.NextPart()
		if perr == io.EOF {
			break
		}
		if perr != nil {
			http.Error(w, "bad request: malformed multipart body", http.StatusBadRequest)
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		filePart = &multipartFilePart{reader: part, filename: part.FileName()}
		break
	}
	if filePart == nil {
		http.Error(w, "bad request: no file field in form", http.StatusBadRequest)
		return
	}
	defer func() { _ = filePart.reader.Close() }()

	if filePart.filename == "" {
		http.Error(w, "bad request: no filename provided", http.StatusBadRequest)
		return
	}

	dst, storedName, err := createUploadFile(s.uploadDir, filePart.filename)
	if err != nil {
		rid := RequestIDFromContext(r.Context())
		log.Printf("rid=%s msg=%q err=%v", rid, "upload_create_failed", err)
		http.Error(w, "server error: cannot store file", http.StatusInternalServerError)
		return
	}

	written, err := copyBounded(dst, filePart.reader)
	cerr := dst.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		// Partial write: drop the file so a retry starts clean.
		_ = os.Remove(dst.Name())
		rid := RequestIDFromContext(r.Context())
		log.Printf("rid=%s msg=%q name=%s err=%v", rid, "upload_write_failed", storedName, err)
		http.Error(w, "server error: write failed", http.StatusInternalServerError)
		return
	}

	s.store.AddFile(store.Entry{
		Name:     storedName,
		Path:     dst.Name(),
		Kind:     store.KindFile,
		Size:     written,
		Uploader: clientIP(r),
	})
	s.metrics.RecordUpload(written)

	rid := RequestIDFromContext(r.Context())
	log.Printf("rid=%s msg=%q name=%s bytes=%d ip=%s", rid, "file_uploaded", storedName, written, clientIP(r))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(uploadFileResp{Status: "success", Filename: storedName})
}

// handleUploadText accepts a JSON body {"text": "..."} and appends a text
// snippet. Any validation failure is a 400 and leaves the catalog
// untouched.
func (s *Server) handleUploadText(w http.ResponseWriter, r *http.Request, _ string) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		http.Error(w, "bad request: expecting application/json", http.StatusBadRequest)
		return
	}
	if r.ContentLength == 0 {
		http.Error(w, "bad request: no content", http.StatusBadRequest)
		return
	}

	var req uploadTextReq
	body := http.MaxBytesReader(w, r.Body, maxTextBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		http.Error(w, "bad request: invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "bad request: empty text content", http.StatusBadRequest)
		return
	}

	s.store.AddText(store.Text{Content: req.Text, Uploader: clientIP(r)})
	s.metrics.RecordTextUpload()

	rid := RequestIDFromContext(r.Context())
	log.Printf("rid=%s msg=%q bytes=%d ip=%s", rid, "text_uploaded", len(req.Text), clientIP(r))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

type multipartFilePart struct {
	reader   io.ReadCloser
	filename string
}

// createUploadFile picks a destination name inside dir and claims it. Any
// directory component the client sent is discarded; on a name collision a
// numeric suffix is appended before the extension (name_1.ext, name_2.ext,
// ...) until creation succeeds. O_EXCL makes the claim safe against two
// same-named uploads racing; within one sequence of uploads the suffixing
// is injective.
func createUploadFile(dir, clientName string) (*os.File, string, error) {
	base := filepath.Base(filepath.FromSlash(clientName))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return nil, "", fmt.Errorf("unusable filename %q", clientName)
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	name := base
	for i := 1; ; i++ {
		dst := filepath.Join(dir, name)
		f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !os.IsExist(err) {
			return nil, "", err
		}
		name = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
}

// copyBounded streams src to dst in fixed-size chunks so one upload never
// holds a whole body in memory.
func copyBounded(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	return io.CopyBuffer(dst, src, buf)
}

// clientIP strips the port from the peer address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
