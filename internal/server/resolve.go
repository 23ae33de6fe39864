package server

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"lanshare/internal/store"
)

var errNotShared = errors.New("path does not resolve to a shared entry")

// resolveShared maps a catalog-relative path (the part after /file/) to an
// absolute filesystem path. Resolution order follows the catalog: an entry
// whose name equals the whole relative path wins; otherwise the first path
// segment is tried as a shared folder and the remainder is joined under
// that folder's real path, which must exist on disk.
//
// ".." segments are rejected outright, and a folder-relative resolution
// must stay inside the folder's subtree: a shared folder authorizes reads
// into its own tree, not past it.
func resolveShared(st *store.Store, rel string) (string, error) {
	rel = strings.TrimSuffix(rel, "/")
	if rel == "" {
		return "", errNotShared
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", errNotShared
		}
	}

	if e, ok := st.FindFile(rel); ok {
		return e.Path, nil
	}

	first, rest, found := strings.Cut(rel, "/")
	if !found {
		return "", errNotShared
	}
	folder, ok := st.FindFolder(first)
	if !ok {
		return "", errNotShared
	}

	abs := filepath.Join(folder.Path, filepath.FromSlash(rest))
	if inside, err := filepath.Rel(folder.Path, abs); err != nil || strings.HasPrefix(inside, "..") {
		return "", errNotShared
	}
	if _, err := os.Stat(abs); err != nil {
		return "", errNotShared
	}
	return abs, nil
}
