package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return body, writer.FormDataContentType()
}

func postFile(t *testing.T, s *Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, "file", filename, content)
	req := httptest.NewRequest(http.MethodPost, "/upload/file", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func TestUploadFile(t *testing.T) {
	s, st := newTestServer(t)

	rr := postFile(t, s, "hello.txt", "hello world")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp uploadFileResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad JSON response: %v", err)
	}
	if resp.Status != "success" || resp.Filename != "hello.txt" {
		t.Errorf("Unexpected response: %+v", resp)
	}

	files := st.Files()
	if len(files) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(files))
	}
	e := files[0]
	if e.Name != "hello.txt" || e.Size != int64(len("hello world")) {
		t.Errorf("Unexpected entry: %+v", e)
	}
	if e.Uploader == "" {
		t.Error("Expected uploader address on entry")
	}

	stored, err := os.ReadFile(e.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(stored) != "hello world" {
		t.Errorf("Stored bytes differ: %q", stored)
	}
}

func TestUploadFileCollisionSuffix(t *testing.T) {
	s, st := newTestServer(t)

	first := postFile(t, s, "dup.txt", "one")
	second := postFile(t, s, "dup.txt", "two")
	third := postFile(t, s, "dup.txt", "three")
	for i, rr := range []*httptest.ResponseRecorder{first, second, third} {
		if rr.Code != http.StatusOK {
			t.Fatalf("Upload %d: expected 200, got %d", i, rr.Code)
		}
	}

	files := st.Files()
	if len(files) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(files))
	}
	wantNames := []string{"dup.txt", "dup_1.txt", "dup_2.txt"}
	wantBody := []string{"one", "two", "three"}
	for i, e := range files {
		if e.Name != wantNames[i] {
			t.Errorf("Entry %d: expected name %q, got %q", i, wantNames[i], e.Name)
		}
		b, err := os.ReadFile(e.Path)
		if err != nil {
			t.Fatalf("ReadFile %s: %v", e.Path, err)
		}
		if string(b) != wantBody[i] {
			t.Errorf("Entry %d: expected body %q, got %q", i, wantBody[i], b)
		}
	}
}

func TestUploadFileStripsClientDirectories(t *testing.T) {
	s, st := newTestServer(t)

	rr := postFile(t, s, "../../etc/passwd", "nope")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	files := st.Files()
	if len(files) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(files))
	}
	if files[0].Name != "passwd" {
		t.Errorf("Expected base name only, got %q", files[0].Name)
	}
	if filepath.Dir(files[0].Path) != filepath.Dir(filepath.Join(s.uploadDir, "x")) {
		t.Errorf("Expected file inside upload dir, got %q", files[0].Path)
	}
}

func TestUploadFileBadRequests(t *testing.T) {
	s, st := newTestServer(t)

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload/file", strings.NewReader("raw"))
		req.Header.Set("Content-Type", "text/plain")
		rr := httptest.NewRecorder()
		s.handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rr.Code)
		}
	})

	t.Run("missing file field", func(t *testing.T) {
		body, ct := multipartBody(t, "other", "x.txt", "data")
		req := httptest.NewRequest(http.MethodPost, "/upload/file", body)
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		s.handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rr.Code)
		}
	})

	if len(st.Files()) != 0 {
		t.Errorf("Failed uploads must not mutate the catalog, got %d entries", len(st.Files()))
	}
}

func TestUploadText(t *testing.T) {
	s, st := newTestServer(t)

	tests := []struct {
		name        string
		contentType string
		body        string
		wantCode    int
	}{
		{"success", "application/json", `{"text":"hello"}`, http.StatusOK},
		{"charset suffix ok", "application/json; charset=utf-8", `{"text":"world"}`, http.StatusOK},
		{"wrong content type", "text/plain", `{"text":"hello"}`, http.StatusBadRequest},
		{"empty body", "application/json", "", http.StatusBadRequest},
		{"invalid json", "application/json", `{"text":`, http.StatusBadRequest},
		{"empty text", "application/json", `{"text":""}`, http.StatusBadRequest},
		{"missing field", "application/json", `{"other":"x"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body == "" {
				req = httptest.NewRequest(http.MethodPost, "/upload/text", nil)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/upload/text", strings.NewReader(tt.body))
			}
			req.Header.Set("Content-Type", tt.contentType)
			rr := httptest.NewRecorder()
			s.handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
		})
	}

	texts := st.Texts()
	if len(texts) != 2 {
		t.Fatalf("Only successful uploads may append; got %d texts", len(texts))
	}
	if texts[0].Content != "hello" || texts[1].Content != "world" {
		t.Errorf("Unexpected texts: %+v", texts)
	}
}

func TestUploadTextRoundTripsContent(t *testing.T) {
	s, st := newTestServer(t)

	payload := "line one\n\tline two — ünïcode 中文"
	body, _ := json.Marshal(uploadTextReq{Text: payload})
	req := httptest.NewRequest(http.MethodPost, "/upload/text", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	n := len(st.Texts())
	req = httptest.NewRequest(http.MethodGet, "/text/"+strconv.Itoa(n-1), nil)
	rr = httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != payload {
		t.Errorf("Content mutated in round trip: %q", rr.Body.String())
	}
}

func TestCreateUploadFileRejectsUnusableNames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"", ".", "/"} {
		if _, _, err := createUploadFile(dir, name); err == nil {
			t.Errorf("Expected error for name %q", name)
		}
	}
}
