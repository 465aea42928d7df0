package worker

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// UploadSweeper removes visual search uploads left behind by requests that
// died before cleaning up after themselves.
type UploadSweeper struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewUploadSweeper constructs an UploadSweeper for dir.
func NewUploadSweeper(dir string, maxAge, interval time.Duration) *UploadSweeper {
	return &UploadSweeper{dir: dir, maxAge: maxAge, interval: interval, now: time.Now}
}

// Start sweeps immediately, then on every tick until ctx is cancelled.
func (w *UploadSweeper) Start(ctx context.Context) {
	if w.interval <= 0 {
		log.Info().Msg("Upload sweeper disabled")
		return
	}
	log.Info().Dur("interval", w.interval).Dur("max_age", w.maxAge).Str("dir", w.dir).Msg("Starting upload sweeper")

	w.Sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep()
		case <-ctx.Done():
			log.Info().Msg("Upload sweeper stopped")
			return
		}
	}
}

// Sweep deletes regular files in the upload directory older than maxAge and
// returns how many were removed.
func (w *UploadSweeper) Sweep() int {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Error().Err(err).Str("dir", w.dir).Msg("Failed to list uploads")
		}
		return 0
	}

	cutoff := w.now().Add(-w.maxAge)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove stale upload")
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Stale uploads swept")
	}
	return removed
}
