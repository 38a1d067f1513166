package jobs

import (
	"context"
	"log"
	"time"

	"shortlinks/internal/db"
	"shortlinks/internal/metrics"
)

// Sweeper periodically deletes links whose expiry has passed. It uses the
// same read-time expiry predicate as the redirect path (expires_at against
// now), so a sweep never disagrees with a concurrent redirect about
// whether a link is gone.
type Sweeper struct {
	db       *db.DB
	interval time.Duration
}

// NewSweeper creates a new expiration sweeper.
func NewSweeper(database *db.DB, interval time.Duration) *Sweeper {
	return &Sweeper{db: database, interval: interval}
}

// Start begins the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	log.Printf("Expiration sweeper started (interval: %v)", s.interval)

	// Run immediately on start
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Expiration sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.db.DeleteExpiredLinks(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("Expiration sweeper: failed to delete expired links: %v", err)
		return
	}
	if deleted > 0 {
		metrics.RecordExpiredSwept(deleted)
		log.Printf("Expiration sweeper: deleted %d expired links", deleted)
	}
}
