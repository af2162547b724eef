package service

import (
	"context"
	"testing"
	"time"

	"github.com/MrFantastico007/DeadDrop/internal/models"
)

func newTestReaper(window time.Duration) (*Reaper, *fakeStore, *fakeObjects, time.Time) {
	store := newFakeStore()
	objects := newFakeObjects()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	r := NewReaper(store, objects, window, testLogger())
	r.now = func() time.Time { return now }
	return r, store, objects, now
}

func TestSweepPurgesQuietRooms(t *testing.T) {
	r, store, _, now := newTestReaper(2 * time.Hour)
	store.seed("QUIET", models.KindText, "old", "", now.Add(-3*time.Hour))

	report, err := r.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.DeletedCount != 1 || report.RoomsCleaned != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(store.messages) != 0 {
		t.Fatal("quiet room's message must be purged")
	}
}

func TestSweepKeepsWholeActiveRoom(t *testing.T) {
	r, store, _, now := newTestReaper(2 * time.Hour)
	// One old message plus one recent one: the recent message keeps the
	// whole room alive, old messages included.
	store.seed("BUSY", models.KindText, "old", "", now.Add(-3*time.Hour))
	store.seed("BUSY", models.KindText, "new", "", now.Add(-30*time.Minute))

	report, err := r.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.DeletedCount != 0 || report.RoomsCleaned != 0 {
		t.Fatalf("active room must be untouched, got %+v", report)
	}
	if len(store.messages) != 2 {
		t.Fatalf("want both messages kept, have %d", len(store.messages))
	}
}

func TestSweepThresholdIsPerRoom(t *testing.T) {
	r, store, _, now := newTestReaper(2 * time.Hour)
	// Every message in STALE is individually younger than nothing special,
	// but the newest one still predates the window, so the room dies whole.
	store.seed("STALE", models.KindText, "a", "", now.Add(-5*time.Hour))
	store.seed("STALE", models.KindText, "b", "", now.Add(-2*time.Hour-time.Minute))

	report, err := r.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.DeletedCount != 2 || report.RoomsCleaned != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestSweepIdempotent(t *testing.T) {
	r, store, _, now := newTestReaper(2 * time.Hour)
	store.seed("QUIET", models.KindText, "old", "", now.Add(-3*time.Hour))
	store.seed("BUSY", models.KindText, "new", "", now.Add(-5*time.Minute))

	if _, err := r.Sweep(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	second, err := r.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.DeletedCount != 0 || second.FileDeletionsAttempted != 0 || second.RoomsCleaned != 0 {
		t.Fatalf("second sweep must be a no-op, got %+v", second)
	}
}

func TestSweepDeletesFilePayloads(t *testing.T) {
	r, store, objects, now := newTestReaper(2 * time.Hour)
	store.seed("QUIET", models.KindFile, "a.png", "tok-a", now.Add(-4*time.Hour))
	store.seed("QUIET", models.KindText, "note", "", now.Add(-4*time.Hour))
	store.seed("ALSO-QUIET", models.KindFile, "b.png", "tok-b", now.Add(-3*time.Hour))

	report, err := r.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.DeletedCount != 3 || report.FileDeletionsAttempted != 2 || report.RoomsCleaned != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(objects.deleted) != 2 {
		t.Fatalf("want 2 payload deletions, got %v", objects.deleted)
	}
}

func TestSweepToleratesObjectStoreFailures(t *testing.T) {
	r, store, objects, now := newTestReaper(2 * time.Hour)
	store.seed("QUIET", models.KindFile, "a.png", "tok-a", now.Add(-4*time.Hour))
	store.seed("QUIET", models.KindFile, "b.png", "tok-b", now.Add(-4*time.Hour))
	objects.failFor["tok-a"] = true

	report, err := r.Sweep(context.Background())
	if err != nil {
		t.Fatalf("a single payload failure must not fail the sweep: %v", err)
	}
	if report.DeletedCount != 2 {
		t.Fatalf("both records must be deleted, got %+v", report)
	}
	if report.FileDeletionsAttempted != 2 {
		t.Fatalf("both deletions must be attempted, got %+v", report)
	}
	if len(objects.deleted) != 1 || objects.deleted[0] != "tok-b" {
		t.Fatalf("surviving deletion should have gone through: %v", objects.deleted)
	}
}

func TestSweepEmptyStore(t *testing.T) {
	r, _, _, _ := newTestReaper(2 * time.Hour)
	report, err := r.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.DeletedCount != 0 || report.RoomsCleaned != 0 {
		t.Fatalf("empty store sweep must report zeros, got %+v", report)
	}
}
