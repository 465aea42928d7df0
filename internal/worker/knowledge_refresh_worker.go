package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// KnowledgeRefresher rebuilds the chat knowledge base from the catalog.
type KnowledgeRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// KnowledgeRefreshWorker periodically rebuilds the knowledge base so edits
// made directly in the database reach the chat and visual search.
type KnowledgeRefreshWorker struct {
	kb       KnowledgeRefresher
	interval time.Duration
}

// NewKnowledgeRefreshWorker constructs a KnowledgeRefreshWorker. A zero
// interval disables it.
func NewKnowledgeRefreshWorker(kb KnowledgeRefresher, interval time.Duration) *KnowledgeRefreshWorker {
	return &KnowledgeRefreshWorker{kb: kb, interval: interval}
}

// Start runs the refresh loop until ctx is cancelled.
func (w *KnowledgeRefreshWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		log.Info().Msg("Knowledge refresh worker disabled")
		return
	}
	log.Info().Dur("interval", w.interval).Msg("Starting knowledge refresh worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Knowledge refresh worker stopped")
			return
		}
	}
}

func (w *KnowledgeRefreshWorker) run(ctx context.Context) {
	start := time.Now()
	n, err := w.kb.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh knowledge base")
		return
	}
	log.Info().Int("products", n).Dur("duration", time.Since(start)).Msg("Knowledge base refreshed")
}
