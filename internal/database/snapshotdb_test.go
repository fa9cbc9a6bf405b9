package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testPayload = `{"sum":2,"result":[{"title":"Pick","type":1,"options":["A","B"],"analysis":{"count":[1,1],"origin":[]}}]}`

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *SnapshotDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

// TestSaveSnapshot tests storing snapshots and duplicate detection.
func TestSaveSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("stores a new snapshot", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		s := &Snapshot{SurveyID: "42", Endpoint: "https://example.com/admin/paper", Payload: []byte(testPayload), Respondents: 2, Questions: 1}
		id, saved, err := db.SaveSnapshot(ctx, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !saved || id == 0 {
			t.Errorf("expected new snapshot, got id=%d saved=%v", id, saved)
		}
		if s.Digest != Digest([]byte(testPayload)) {
			t.Error("expected digest to be filled in")
		}

		got, err := db.SnapshotByID(ctx, id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got.Payload) != testPayload || got.Respondents != 2 || got.Endpoint != s.Endpoint {
			t.Errorf("unexpected snapshot: %+v", got)
		}
		if got.FetchedAt.IsZero() {
			t.Error("expected fetch time to be stored")
		}

		payload, err := got.Decode()
		if err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Sum != 2 {
			t.Errorf("expected sum 2, got %d", payload.Sum)
		}
	})

	t.Run("identical payload is stored once", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		first, _, err := db.SaveSnapshot(ctx, &Snapshot{SurveyID: "1", Payload: []byte(testPayload)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, saved, err := db.SaveSnapshot(ctx, &Snapshot{SurveyID: "1", Payload: []byte(testPayload)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved || second != first {
			t.Errorf("expected duplicate to map to %d, got id=%d saved=%v", first, second, saved)
		}

		// The same payload for another survey is a separate snapshot.
		_, saved, err = db.SaveSnapshot(ctx, &Snapshot{SurveyID: "2", Payload: []byte(testPayload)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !saved {
			t.Error("expected snapshot for another survey to be stored")
		}
	})

	t.Run("payload returning to an earlier state becomes the latest", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		bodyA := `{"sum":1,"result":[]}`
		bodyB := `{"sum":2,"result":[]}`

		idA, _, err := db.SaveSnapshot(ctx, &Snapshot{SurveyID: "3", Payload: []byte(bodyA), FetchedAt: base})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, _, err := db.SaveSnapshot(ctx, &Snapshot{SurveyID: "3", Payload: []byte(bodyB), FetchedAt: base.Add(time.Hour)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		again, saved, err := db.SaveSnapshot(ctx, &Snapshot{
			SurveyID:  "3",
			Endpoint:  "http://new",
			Payload:   []byte(bodyA),
			FetchedAt: base.Add(2 * time.Hour),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved || again != idA {
			t.Errorf("expected existing snapshot %d, got id=%d saved=%v", idA, again, saved)
		}

		latest, err := db.LatestSnapshot(ctx, "3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(latest.Payload) != bodyA {
			t.Errorf("expected %s as latest, got %s", bodyA, latest.Payload)
		}
		if !latest.FetchedAt.Equal(base.Add(2*time.Hour)) || latest.Endpoint != "http://new" {
			t.Errorf("expected refreshed fetch time and endpoint, got %v %q", latest.FetchedAt, latest.Endpoint)
		}

		// An older fetch of a stored payload does not move it back in time.
		if _, _, err := db.SaveSnapshot(ctx, &Snapshot{SurveyID: "3", Payload: []byte(bodyA), FetchedAt: base}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		latest, err = db.LatestSnapshot(ctx, "3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !latest.FetchedAt.Equal(base.Add(2 * time.Hour)) {
			t.Errorf("expected fetch time to stay %v, got %v", base.Add(2*time.Hour), latest.FetchedAt)
		}
	})

	t.Run("missing survey id is rejected", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if _, _, err := db.SaveSnapshot(context.Background(), &Snapshot{Payload: []byte("{}")}); err == nil {
			t.Error("expected error for missing survey id")
		}
	})
}

// TestLatestSnapshot tests ordering of snapshots by fetch time.
func TestLatestSnapshot(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, body := range []string{`{"result":[],"sum":1}`, `{"result":[],"sum":3}`, `{"result":[],"sum":2}`} {
		_, _, err := db.SaveSnapshot(ctx, &Snapshot{
			SurveyID:  "7",
			Payload:   []byte(body),
			FetchedAt: base.Add(time.Duration([]int{0, 2, 1}[i]) * time.Hour),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	latest, err := db.LatestSnapshot(ctx, "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(latest.Payload) != `{"result":[],"sum":3}` {
		t.Errorf("expected the latest fetch, got %s", latest.Payload)
	}
	if !latest.FetchedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("unexpected fetch time %v", latest.FetchedAt)
	}

	history, err := db.History(ctx, "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}
	if !history[0].FetchedAt.After(history[1].FetchedAt) || !history[1].FetchedAt.After(history[2].FetchedAt) {
		t.Error("expected history newest first")
	}
	if history[0].Size != int64(len(`{"result":[],"sum":3}`)) {
		t.Errorf("unexpected size %d", history[0].Size)
	}

	t.Run("unknown survey returns ErrSnapshotNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := db.LatestSnapshot(ctx, "nope")
		if !errors.Is(err, ErrSnapshotNotFound) {
			t.Errorf("expected ErrSnapshotNotFound, got %v", err)
		}
	})

	t.Run("unknown id returns ErrSnapshotNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := db.SnapshotByID(ctx, 9999)
		if !errors.Is(err, ErrSnapshotNotFound) {
			t.Errorf("expected ErrSnapshotNotFound, got %v", err)
		}
	})
}

// TestListSurveys tests the survey summary listing.
func TestListSurveys(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	for _, s := range []*Snapshot{
		{SurveyID: "b", Payload: []byte(`{"result":[],"sum":1}`)},
		{SurveyID: "a", Payload: []byte(`{"result":[],"sum":1}`)},
		{SurveyID: "b", Payload: []byte(`{"result":[],"sum":2}`)},
	} {
		if _, _, err := db.SaveSnapshot(ctx, s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	surveys, err := db.ListSurveys(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(surveys) != 2 {
		t.Fatalf("expected 2 surveys, got %d", len(surveys))
	}
	if surveys[0].SurveyID != "a" || surveys[0].Snapshots != 1 {
		t.Errorf("unexpected first survey: %+v", surveys[0])
	}
	if surveys[1].SurveyID != "b" || surveys[1].Snapshots != 2 || surveys[1].LatestAt.IsZero() {
		t.Errorf("unexpected second survey: %+v", surveys[1])
	}
}

// TestParseTimestamp tests parsing of stored timestamps.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2024-03-01 10:00:00.123456", time.Date(2024, 3, 1, 10, 0, 0, 123456000, time.UTC)},
		{"2024-03-01 10:00:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-03-01T10:00:00Z", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"garbage", time.Time{}},
	}
	for _, tt := range tests {
		if got := parseTimestamp(tt.input); !got.Equal(tt.expected) {
			t.Errorf("parseTimestamp(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

// TestDigest tests that digests are stable and distinct.
func TestDigest(t *testing.T) {
	t.Parallel()

	a := Digest([]byte("a"))
	if a != Digest([]byte("a")) {
		t.Error("expected stable digest")
	}
	if a == Digest([]byte("b")) {
		t.Error("expected distinct digests")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a))
	}
}
