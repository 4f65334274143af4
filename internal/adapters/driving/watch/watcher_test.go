package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRelevant(t *testing.T) {
	target := "/docs/report.pdf"

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write to pdf", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"create pdf", fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{"chmod pdf", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"remove pdf", fsnotify.Event{Name: target, Op: fsnotify.Remove}, false},
		{"rename pdf away", fsnotify.Event{Name: target, Op: fsnotify.Rename}, false},
		{"write to sibling", fsnotify.Event{Name: "/docs/other.pdf", Op: fsnotify.Write}, false},
		{"unclean path", fsnotify.Event{Name: "/docs/./report.pdf", Op: fsnotify.Write}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRelevant(tt.event, target))
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "doc.pdf"), nil)
	assert.Error(t, err)

	_, err = New(filepath.Join(t.TempDir(), "missing", "doc.pdf"), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWatcherFailed)
}

func TestWatcher_RebuildsOnceAfterBurst(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("v1"), 0o600))

	var calls atomic.Int32
	w, err := New(pdf, func(context.Context) error {
		calls.Add(1)
		return nil
	}, WithDebounce(200*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Unrelated files never trigger a rebuild.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	for _, content := range []string{"v2", "v3", "v4"} {
		require.NoError(t, os.WriteFile(pdf, []byte(content), 0o600))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_KeepsWatchingAfterRebuildError(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("v1"), 0o600))

	var calls atomic.Int32
	w, err := New(pdf, func(context.Context) error {
		calls.Add(1)
		return assert.AnError
	}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(pdf, []byte("v2"), 0o600))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(pdf, []byte("v3"), 0o600))
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 20*time.Millisecond)
}
