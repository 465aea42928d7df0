package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(context.Context) (int, error) {
	r.calls.Add(1)
	return 3, r.err
}

func TestKnowledgeRefreshWorker_Disabled(t *testing.T) {
	r := &countingRefresher{}
	done := make(chan struct{})
	go func() {
		NewKnowledgeRefreshWorker(r, 0).Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled worker did not return")
	}
	assert.Zero(t, r.calls.Load())
}

func TestKnowledgeRefreshWorker_Ticks(t *testing.T) {
	r := &countingRefresher{err: errors.New("db down")}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewKnowledgeRefreshWorker(r, 5*time.Millisecond).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestUploadSweeper_Sweep(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	write := func(name string, age time.Duration) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		require.NoError(t, os.Chtimes(path, now.Add(-age), now.Add(-age)))
		return path
	}
	stale := write("stale.png", 2*time.Hour)
	fresh := write("fresh.png", time.Minute)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	s := NewUploadSweeper(dir, time.Hour, time.Minute)
	s.now = func() time.Time { return now }

	assert.Equal(t, 1, s.Sweep())
	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.DirExists(t, filepath.Join(dir, "nested"))

	missing := NewUploadSweeper(filepath.Join(dir, "absent"), time.Hour, time.Minute)
	assert.Zero(t, missing.Sweep())
}
