package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hylla/sikte/internal/analytics"
	"github.com/hylla/sikte/internal/domain"
)

func testLog() analytics.Log {
	return analytics.Log{
		ProgressEntries: []domain.ProgressEntry{
			{ID: "p1", GoalID: "g1", Date: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), Value: 3},
		},
		GoalHistory: []domain.Goal{
			{ID: "g1", Title: "Run", TargetValue: 100, Priority: domain.PriorityMedium,
				Status: domain.StatusActive, CreatedAt: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo, err := Open(filepath.Join(t.TempDir(), "sikte.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = repo.Close() }()

	if err := repo.Save(context.Background(), testLog()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, ok, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !ok {
		t.Fatal("expected ok after save")
	}
	if len(loaded.ProgressEntries) != 1 || len(loaded.GoalHistory) != 1 {
		t.Fatalf("unexpected loaded log %#v", loaded)
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	repo, err := Open(filepath.Join(t.TempDir(), "sikte.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = repo.Close() }()

	_, ok, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for empty database")
	}
}

func TestSaveReplacesSingleRow(t *testing.T) {
	repo, err := Open(filepath.Join(t.TempDir(), "sikte.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = repo.Close() }()

	if err := repo.Save(context.Background(), testLog()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	bigger := testLog()
	bigger.Sessions = []domain.ProductivitySession{
		{ID: "s1", Date: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), Duration: 25, Type: domain.SessionWork},
	}
	if err := repo.Save(context.Background(), bigger); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, _, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Sessions) != 1 {
		t.Fatalf("expected replaced blob with 1 session, got %d", len(loaded.Sessions))
	}

	var rows int
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM analytics_log`).Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected a single durable row, got %d", rows)
	}
}

func TestOpenInMemory(t *testing.T) {
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = repo.Close() }()

	if err := repo.Save(context.Background(), testLog()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	_, ok, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !ok {
		t.Fatal("expected ok after save")
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
