// Package store holds the in-memory catalog of shared files, folders and
// text snippets. All mutation goes through a single mutex so the HTTP
// handlers and the embedding UI can work against the same catalog; readers
// get copied snapshots and never observe a half-applied mutation.
package store

import (
	"sync"

	"github.com/google/uuid"
)

// Kind distinguishes file entries from folder entries.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Entry is one shared file or folder. Path points at the real filesystem
// location; the store owns the entry, not the file behind it.
type Entry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Kind     Kind   `json:"type"`
	Size     int64  `json:"size,omitempty"`
	Uploader string `json:"uploader"`
}

// Text is one shared text snippet, addressed by position on the wire.
type Text struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Uploader string `json:"uploader"`
}

// State is the JSON-serializable shape of the whole catalog. The embedding
// application persists and restores it; the store does not touch disk.
type State struct {
	Files []Entry `json:"files"`
	Texts []Text  `json:"texts"`
}

// Store is the shared catalog. The zero value is not usable; call New.
type Store struct {
	mu     sync.Mutex
	files  []Entry
	texts  []Text
	notify func()
}

func New() *Store {
	return &Store{}
}

// SetNotify registers the hook invoked after every successful mutation.
// It runs outside the store lock. There is a single owner: the server
// lifecycle sets it once at construction and fans the signal out.
func (s *Store) SetNotify(fn func()) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

func (s *Store) fireNotify() {
	s.mu.Lock()
	fn := s.notify
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// AddFile appends a file or folder entry, assigning an ID when the caller
// did not bring one, and returns the stored entry.
func (s *Store) AddFile(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	s.mu.Lock()
	s.files = append(s.files, e)
	s.mu.Unlock()
	s.fireNotify()
	return e
}

// AddText appends a text snippet and returns the stored value.
func (s *Store) AddText(t Text) Text {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	s.mu.Lock()
	s.texts = append(s.texts, t)
	s.mu.Unlock()
	s.fireNotify()
	return t
}

// RemoveFile deletes the entry with the given ID. Reports whether an entry
// was removed.
func (s *Store) RemoveFile(id string) bool {
	s.mu.Lock()
	removed := false
	for i, e := range s.files {
		if e.ID == id {
			s.files = append(s.files[:i], s.files[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()
	if removed {
		s.fireNotify()
	}
	return removed
}

// RemoveText deletes the text with the given ID. Reports whether a text
// was removed.
func (s *Store) RemoveText(id string) bool {
	s.mu.Lock()
	removed := false
	for i, t := range s.texts {
		if t.ID == id {
			s.texts = append(s.texts[:i], s.texts[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()
	if removed {
		s.fireNotify()
	}
	return removed
}

// ClearFiles drops every file entry and returns how many were dropped.
func (s *Store) ClearFiles() int {
	s.mu.Lock()
	n := len(s.files)
	s.files = nil
	s.mu.Unlock()
	if n > 0 {
		s.fireNotify()
	}
	return n
}

// ClearTexts drops every text and returns how many were dropped.
func (s *Store) ClearTexts() int {
	s.mu.Lock()
	n := len(s.texts)
	s.texts = nil
	s.mu.Unlock()
	if n > 0 {
		s.fireNotify()
	}
	return n
}

// Files returns a point-in-time copy of the file entries in display order.
func (s *Store) Files() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.files))
	copy(out, s.files)
	return out
}

// Texts returns a point-in-time copy of the texts in display order.
func (s *Store) Texts() []Text {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Text, len(s.texts))
	copy(out, s.texts)
	return out
}

// FindFile returns the first entry whose name matches, in insertion order.
// Names are not unique; first match wins.
func (s *Store) FindFile(name string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.files {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// FindFolder returns the first folder entry whose name matches.
func (s *Store) FindFolder(name string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.files {
		if e.Kind == KindFolder && e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// TextContent returns the content of texts[i], if i is in range.
func (s *Store) TextContent(i int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.texts) {
		return "", false
	}
	return s.texts[i].Content, true
}

// Snapshot copies the whole catalog for persistence.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Files: make([]Entry, len(s.files)),
		Texts: make([]Text, len(s.texts)),
	}
	copy(st.Files, s.files)
	copy(st.Texts, s.texts)
	return st
}

// Restore replaces the catalog contents with a previously persisted state.
// Loading is not a mutation from the UI's point of view, so no notification
// fires.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make([]Entry, len(st.Files))
	s.texts = make([]Text, len(st.Texts))
	copy(s.files, st.Files)
	copy(s.texts, st.Texts)
	for i := range s.files {
		if s.files[i].ID == "" {
			s.files[i].ID = uuid.New().String()
		}
	}
	for i := range s.texts {
		if s.texts[i].ID == "" {
			s.texts[i].ID = uuid.New().String()
		}
	}
}
