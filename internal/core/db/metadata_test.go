package db

import (
	"testing"
	"time"
)

func TestLastImportTimestamp_Unset(t *testing.T) {
	database := setupTestDB(t)

	_, ok, err := database.LastImportTimestamp("/repo/a")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Expected no watermark for a fresh project")
	}
}

func TestSetLastImportTimestamp_Upsert(t *testing.T) {
	database := setupTestDB(t)
	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	if err := database.SetLastImportTimestamp("/repo/a", first); err != nil {
		t.Fatal(err)
	}
	if err := database.SetLastImportTimestamp("/repo/a", second); err != nil {
		t.Fatal(err)
	}

	ts, ok, err := database.LastImportTimestamp("/repo/a")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || !ts.Equal(second) {
		t.Errorf("Watermark = %v ok=%v, want %v", ts, ok, second)
	}

	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM import_metadata").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected one row per project, got %d", count)
	}
}

func TestSetLastImportTimestamp_OnlyMovesForward(t *testing.T) {
	database := setupTestDB(t)
	newer := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	if err := database.SetLastImportTimestamp("/repo/a", newer); err != nil {
		t.Fatal(err)
	}
	if err := database.SetLastImportTimestamp("/repo/a", older); err != nil {
		t.Fatal(err)
	}

	ts, _, err := database.LastImportTimestamp("/repo/a")
	if err != nil {
		t.Fatal(err)
	}
	if !ts.Equal(newer) {
		t.Errorf("Watermark regressed to %v, want %v", ts, newer)
	}
}

func TestWatermark_PerProject(t *testing.T) {
	database := setupTestDB(t)
	tsA := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	tsB := tsA.Add(time.Hour)

	if err := database.SetLastImportTimestamp("/repo/a", tsA); err != nil {
		t.Fatal(err)
	}
	if err := database.SetLastImportTimestamp("/repo/b", tsB); err != nil {
		t.Fatal(err)
	}

	got, _, err := database.LastImportTimestamp("/repo/a")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(tsA) {
		t.Errorf("Project /repo/a watermark = %v, want %v", got, tsA)
	}
}

func TestSetLastImportTimestamp_SubsecondForward(t *testing.T) {
	database := setupTestDB(t)
	first := time.Date(2025, 6, 1, 10, 0, 0, 120_000_000, time.UTC)
	second := time.Date(2025, 6, 1, 10, 0, 0, 125_000_000, time.UTC)

	if err := database.SetLastImportTimestamp("/repo/a", first); err != nil {
		t.Fatal(err)
	}
	if err := database.SetLastImportTimestamp("/repo/a", second); err != nil {
		t.Fatal(err)
	}

	ts, ok, err := database.LastImportTimestamp("/repo/a")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || !ts.Equal(second) {
		t.Errorf("Watermark = %v ok=%v, want %v", ts, ok, second)
	}
}
