package api

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ayusman/pinchball/internal/app"
	"github.com/ayusman/pinchball/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "pinchball-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// fakeLoop records submitted commands and serves a fixed snapshot.
type fakeLoop struct {
	mu       sync.Mutex
	snap     app.Snapshot
	commands []app.Command
	err      error
}

func (f *fakeLoop) Latest() app.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeLoop) Submit(cmd app.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.commands = append(f.commands, cmd)
	return nil
}
