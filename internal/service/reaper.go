package service

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"go.uber.org/zap"

	"github.com/MrFantastico007/DeadDrop/internal/metrics"
	"github.com/MrFantastico007/DeadDrop/internal/repository"
	"github.com/MrFantastico007/DeadDrop/internal/storage"
)

// SweepReport summarizes one inactivity sweep.
type SweepReport struct {
	DeletedCount           int64 `json:"deletedCount"`
	FileDeletionsAttempted int   `json:"fileDeletionsAttempted"`
	RoomsCleaned           int   `json:"roomsCleaned"`
}

// Reaper purges rooms that have gone quiet. A room is judged by its most
// recent message: one fresh message keeps the whole room alive, and a room
// whose newest message predates the window loses everything, younger
// stragglers included. One global sweep evaluates all rooms; no per-room
// timers exist.
type Reaper struct {
	store   repository.MessageStore
	objects storage.ObjectStore
	window  time.Duration
	log     *zap.SugaredLogger

	now func() time.Time
}

func NewReaper(store repository.MessageStore, objects storage.ObjectStore, window time.Duration, log *zap.SugaredLogger) *Reaper {
	return &Reaper{store: store, objects: objects, window: window, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Sweep runs one pass. It never touches live channel membership: a
// connection may stay joined to a purged room and simply sees an empty
// history next time. Running Sweep twice back to back is a no-op the
// second time.
func (r *Reaper) Sweep(ctx context.Context) (*SweepReport, error) {
	threshold := r.now().Add(-r.window)

	active, err := r.store.ActiveRoomCodes(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("find active rooms: %w", err)
	}
	stale, err := r.store.ListOutsideRooms(ctx, active)
	if err != nil {
		return nil, fmt.Errorf("find stale messages: %w", err)
	}
	if len(stale) == 0 {
		return &SweepReport{}, nil
	}

	rooms := make(map[string]struct{})
	ids := make([]string, 0, len(stale))
	attempted := 0
	for _, m := range stale {
		rooms[m.RoomCode] = struct{}{}
		ids = append(ids, m.ID)
		if m.IsFile() && m.FileDeletionToken != "" {
			attempted++
			if err := r.objects.Delete(ctx, m.FileDeletionToken); err != nil {
				// Orphaned object, not an aborted sweep.
				r.log.Errorw("sweep file delete failed", "message", m.ID, "room", m.RoomCode, "error", err)
			}
		}
	}

	deleted, err := r.store.DeleteByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("delete stale messages: %w", err)
	}

	report := &SweepReport{
		DeletedCount:           deleted,
		FileDeletionsAttempted: attempted,
		RoomsCleaned:           len(rooms),
	}
	metrics.SweepMessagesPurged.Add(float64(deleted))
	metrics.SweepFileDeletions.Add(float64(attempted))
	metrics.SweepRoomsCleaned.Add(float64(len(rooms)))
	r.log.Infow("sweep complete",
		"deleted", report.DeletedCount,
		"fileDeletions", report.FileDeletionsAttempted,
		"rooms", report.RoomsCleaned)
	return report, nil
}

// Start launches the cron-driven sweep loop and returns its cancel func.
// An external trigger can still call Sweep directly at any time; an extra
// run only finds nothing to do.
func (r *Reaper) Start(ctx context.Context, cronExpr string) (context.CancelFunc, error) {
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid cleanup cron expression: %s", cronExpr)
	}
	ctx, cancel := context.WithCancel(ctx)
	go r.run(ctx, cronExpr)
	r.log.Infow("cleanup scheduler started", "cron", cronExpr, "window", r.window)
	return cancel, nil
}

func (r *Reaper) run(ctx context.Context, cronExpr string) {
	for {
		next, err := gronx.NextTickAfter(cronExpr, time.Now().UTC(), false)
		if err != nil {
			r.log.Errorw("cleanup next tick failed", "cron", cronExpr, "error", err)
			next = time.Now().UTC().Add(time.Minute)
		}
		select {
		case <-ctx.Done():
			r.log.Info("cleanup scheduler stopping")
			return
		case <-time.After(time.Until(next)):
		}
		if _, err := r.Sweep(ctx); err != nil {
			// A failed sweep waits for the next tick; failures are reported,
			// never swallowed.
			r.log.Errorw("sweep failed", "error", err)
		}
	}
}
