package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMatches(t *testing.T) {
	w := New(t.TempDir(), []string{"*.csv", "jr1_*.xlsx"}, 0, nil)

	assert.True(t, w.Matches("/in/usage.csv"))
	assert.True(t, w.Matches("jr1_2023.xlsx"))
	assert.False(t, w.Matches("br2_2023.xlsx"))
	assert.False(t, w.Matches("~$jr1_2023.xlsx"))
	assert.False(t, w.Matches("notes.txt"))
	assert.Equal(t, DefaultSettle, w.settle)
}

func TestSettled(t *testing.T) {
	w := New(t.TempDir(), []string{"*.csv"}, time.Second, nil)
	start := time.Now()
	w.pending["b.csv"] = start
	w.pending["a.csv"] = start
	w.pending["c.csv"] = start.Add(500 * time.Millisecond)

	assert.Empty(t, w.settled(start.Add(900*time.Millisecond)))
	assert.Equal(t, []string{"a.csv", "b.csv"}, w.settled(start.Add(time.Second)))
	assert.Equal(t, []string{"c.csv"}, w.settled(start.Add(2*time.Second)))
	assert.Empty(t, w.pending)
}

func TestRun_HandsOverSettledFiles(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, []string{"*.csv"}, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	handled := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, path string) { handled <- path })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "usage.csv"), []byte("a,b\n"), 0644))

	select {
	case path := <-handled:
		assert.Equal(t, filepath.Join(dir, "usage.csv"), path)
	case <-time.After(5 * time.Second):
		t.Fatal("settled file was not handed over")
	}

	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, handled)
}

func TestRun_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), []string{"*.csv"}, 0, nil)
	err := w.Run(context.Background(), func(context.Context, string) {})
	assert.Error(t, err)
}
