package intent

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	id "amparo/pkg/domain"
)

// DocumentChecker answers whether a metadata row exists for an uploaded
// digest. Satisfied by the document store.
type DocumentChecker interface {
	ExistsByDigest(ctx context.Context, claimID id.ClaimID, digest string) (bool, error)
}

// Sweeper periodically reconciles lingering upload intents against the
// document store. An intent older than the grace window with no matching
// metadata row means the upload died after the blob write: the blob is
// orphaned but harmless, so the sweeper only reports it and clears intents
// whose row did land.
type Sweeper struct {
	intents   Store
	documents DocumentChecker
	logger    *slog.Logger
	interval  time.Duration
	grace     time.Duration
}

// NewSweeper constructs a sweeper; interval controls run frequency, grace is
// how long an intent may linger before it counts as orphaned.
func NewSweeper(intents Store, documents DocumentChecker, logger *slog.Logger, interval, grace time.Duration) *Sweeper {
	return &Sweeper{
		intents:   intents,
		documents: documents,
		logger:    logger,
		interval:  interval,
		grace:     grace,
	}
}

// Run sweeps until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "intent sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce performs a single reconciliation pass.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	records, err := s.intents.Scan(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-s.grace)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, record := range records {
		g.Go(func() error {
			exists, err := s.documents.ExistsByDigest(ctx, record.ClaimID, record.Digest)
			if err != nil {
				return err
			}
			if exists {
				// The metadata insert landed; the intent just wasn't
				// cleared. Safe to complete now.
				return s.intents.Complete(ctx, record.ClaimID, record.Digest)
			}
			if record.StartedAt.Before(cutoff) {
				s.logger.WarnContext(ctx, "orphaned upload detected",
					"claim_id", record.ClaimID.String(),
					"digest", record.Digest,
					"started_at", record.StartedAt,
				)
			}
			return nil
		})
	}
	return g.Wait()
}
