// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/service"
)

// sweepTimeout bounds one run of the orphan sweep.
const sweepTimeout = 10 * time.Minute

// SweepResult summarizes one sweep.
type SweepResult struct {
	Scanned int
	Claimed int
	Deleted int
}

// OrphanSweeper deletes uploaded files that were never attached to a
// record. Uploads younger than the grace period are left alone so a client
// can still finish the second phase.
type OrphanSweeper struct {
	uploadRepository repository.UploadRepository
	assetService     *service.AssetService
	grace            time.Duration
	now              func() time.Time
}

func NewOrphanSweeper(uploadRepository repository.UploadRepository, assetService *service.AssetService, grace time.Duration) *OrphanSweeper {
	return &OrphanSweeper{
		uploadRepository: uploadRepository,
		assetService:     assetService,
		grace:            grace,
		now:              time.Now,
	}
}

// Sweep runs once. Ledger rows of referenced files are dropped; unreferenced
// files are deleted remotely, then their rows.
func (s *OrphanSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	uploads, err := s.uploadRepository.OlderThan(ctx, s.now().UTC().Add(-s.grace))
	if err != nil {
		return res, fmt.Errorf("listing uploads: %w", err)
	}
	res.Scanned = len(uploads)
	if len(uploads) == 0 {
		return res, nil
	}

	referenced, err := s.uploadRepository.ReferencedKeys(ctx)
	if err != nil {
		return res, fmt.Errorf("collecting referenced keys: %w", err)
	}

	var claimed, orphaned []string
	for _, u := range uploads {
		if _, ok := referenced[u.Key]; ok {
			claimed = append(claimed, u.Key)
		} else {
			orphaned = append(orphaned, u.Key)
		}
	}

	if len(claimed) > 0 {
		if err := s.uploadRepository.DeleteByKeys(ctx, claimed); err != nil {
			return res, fmt.Errorf("dropping claimed uploads: %w", err)
		}
		res.Claimed = len(claimed)
	}

	if len(orphaned) > 0 {
		if err := s.assetService.Delete(ctx, orphaned...); err != nil {
			return res, fmt.Errorf("deleting orphaned files: %w", err)
		}
		res.Deleted = len(orphaned)
	}

	slog.Info("orphan sweep finished", "scanned", res.Scanned, "claimed", res.Claimed, "deleted", res.Deleted)
	return res, nil
}

// Scheduler owns the cron instance running the sweep.
type Scheduler struct {
	cron *cron.Cron
}

// Start schedules sweeper on the cron expression and starts the scheduler.
func Start(schedule string, sweeper *OrphanSweeper) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := sweeper.Sweep(ctx); err != nil {
			slog.Error("orphan sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	c.Start()
	slog.Info("orphan sweep scheduled", "schedule", schedule)
	return &Scheduler{cron: c}, nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		slog.Warn("orphan sweep still running at shutdown")
	}
}
