package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanshare/internal/store"
)

func TestPruneRemovesDeadUploads(t *testing.T) {
	dir := t.TempDir()

	alive := filepath.Join(dir, "alive.txt")
	require.NoError(t, os.WriteFile(alive, []byte("a"), 0o644))
	dead := filepath.Join(dir, "dead.txt")
	require.NoError(t, os.WriteFile(dead, []byte("d"), 0o644))

	st := store.New()
	st.AddFile(store.Entry{Name: "alive.txt", Path: alive, Kind: store.KindFile})
	st.AddFile(store.Entry{Name: "dead.txt", Path: dead, Kind: store.KindFile})
	// A local share outside the upload dir never gets pruned, even when
	// its target is missing.
	st.AddFile(store.Entry{Name: "elsewhere.txt", Path: filepath.Join(t.TempDir(), "gone.txt"), Kind: store.KindFile})
	// Folders are not pruned either.
	st.AddFile(store.Entry{Name: "sub", Path: filepath.Join(dir, "sub"), Kind: store.KindFolder})

	require.NoError(t, os.Remove(dead))

	w := &Watcher{st: st, dir: dir}
	w.prune()

	names := make([]string, 0)
	for _, e := range st.Files() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"alive.txt", "elsewhere.txt", "sub"}, names)
}

func TestPruneFiresUpdateNotification(t *testing.T) {
	dir := t.TempDir()
	dead := filepath.Join(dir, "dead.txt")
	require.NoError(t, os.WriteFile(dead, []byte("d"), 0o644))

	st := store.New()
	e := st.AddFile(store.Entry{Name: "dead.txt", Path: dead, Kind: store.KindFile})

	fired := 0
	st.SetNotify(func() { fired++ })

	require.NoError(t, os.Remove(dead))
	w := &Watcher{st: st, dir: dir}
	w.prune()

	assert.Equal(t, 1, fired)
	assert.False(t, st.RemoveFile(e.ID), "entry should already be gone")
}

func TestNewAndClose(t *testing.T) {
	st := store.New()
	w, err := New(st, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = New(st, filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
