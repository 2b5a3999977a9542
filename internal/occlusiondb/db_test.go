package occlusiondb

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spinscan-data/occlusion.report/internal/occlusion"
)

func openTestDB(t *testing.T) *OcclusionDB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if dirty {
		t.Error("fresh database should not be dirty")
	}
	if version != 2 {
		t.Errorf("schema version = %d, want 2", version)
	}

	// Both tables must exist and be queryable.
	for _, table := range []string{"occlusion_runs", "occlusion_frames"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Errorf("table %s not usable: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	db.Close()

	// Re-opening an already-migrated database must not fail.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	db.Close()
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)

	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	params, _ := json.Marshal(map[string]any{"history_size": 30})
	runID, err := db.InsertRun(RunRecord{
		Source:    "scans.csv",
		Params:    params,
		StartedAt: started,
	})
	if err != nil {
		t.Fatalf("InsertRun: %v", err)
	}
	if runID == "" {
		t.Fatal("InsertRun should generate a run ID")
	}

	rec, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if rec == nil {
		t.Fatal("inserted run not found")
	}
	if rec.Status != "running" {
		t.Errorf("Status = %q, want \"running\"", rec.Status)
	}
	if rec.Source != "scans.csv" {
		t.Errorf("Source = %q, want \"scans.csv\"", rec.Source)
	}
	if !rec.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", rec.StartedAt, started)
	}
	if rec.CompletedAt != nil {
		t.Error("running run should have no completion time")
	}
	var gotParams map[string]any
	if err := json.Unmarshal(rec.Params, &gotParams); err != nil {
		t.Fatalf("stored params not valid JSON: %v", err)
	}
	if gotParams["history_size"] != float64(30) {
		t.Errorf("params round trip lost history_size: %v", gotParams)
	}

	completed := started.Add(42 * time.Second)
	if err := db.CompleteRun(runID, 30, 10, completed, ""); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}
	rec, err = db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun after complete: %v", err)
	}
	if rec.Status != "completed" || rec.Error != "" {
		t.Errorf("completed run: status %q error %q", rec.Status, rec.Error)
	}
	if rec.FramesProcessed != 30 || rec.OccludedFrames != 10 {
		t.Errorf("counters = %d/%d, want 30/10", rec.FramesProcessed, rec.OccludedFrames)
	}
	if rec.CompletedAt == nil || !rec.CompletedAt.Equal(completed) {
		t.Errorf("CompletedAt = %v, want %v", rec.CompletedAt, completed)
	}
}

func TestCompleteRunFailure(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.InsertRun(RunRecord{Source: "bad.csv", StartedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.CompleteRun(runID, 5, 0, time.Now(), "out-of-order frame at timestep 3"); err != nil {
		t.Fatal(err)
	}

	rec, err := db.GetRun(runID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != "failed" {
		t.Errorf("Status = %q, want \"failed\"", rec.Status)
	}
	if rec.Error != "out-of-order frame at timestep 3" {
		t.Errorf("Error = %q", rec.Error)
	}
}

func TestGetRunMissing(t *testing.T) {
	db := openTestDB(t)
	rec, err := db.GetRun("no-such-run")
	if err != nil {
		t.Fatalf("GetRun on missing ID should not error: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
}

func TestListRunsOrder(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := db.InsertRun(RunRecord{
			RunID:     string(rune('a' + i)),
			Source:    "scans.csv",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "c" || runs[1].RunID != "b" {
		t.Errorf("expected most recent first, got %s, %s", runs[0].RunID, runs[1].RunID)
	}
}

func TestFrameResultsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.InsertRun(RunRecord{Source: "scans.csv", StartedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}

	results := []*occlusion.FrameResult{
		{Timestep: 1},
		{Timestep: 2, HasOcclusion: true, Segments: []occlusion.ClassifiedSegment{
			{StartAngleDeg: -165.0, EndAngleDeg: -150.0, StartBeam: 15, EndBeam: 30, WidthBeams: 16, Stability: 0.7, IsOcclusion: true},
		}},
	}
	for _, res := range results {
		if err := db.InsertFrameResult(runID, res); err != nil {
			t.Fatalf("InsertFrameResult: %v", err)
		}
	}

	rows, err := db.GetFrameResults(runID, 0)
	if err != nil {
		t.Fatalf("GetFrameResults: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Timestep != 1 || rows[0].HasOcclusion || rows[0].AngleRangesDeg != "" {
		t.Errorf("clean frame row mismatch: %+v", rows[0])
	}
	got := rows[1]
	if !got.HasOcclusion || got.NumSegments != 1 {
		t.Errorf("occluded frame row mismatch: %+v", got)
	}
	// Stored strings must match the CSV sink's formatting exactly.
	if got.AngleRangesDeg != "-165.0 to -150.0" {
		t.Errorf("AngleRangesDeg = %q", got.AngleRangesDeg)
	}
	if got.BeamIndices != "15-30" {
		t.Errorf("BeamIndices = %q", got.BeamIndices)
	}
	if got.Stabilities != "0.70" {
		t.Errorf("Stabilities = %q", got.Stabilities)
	}

	n, err := db.CountOccludedFrames(runID)
	if err != nil {
		t.Fatalf("CountOccludedFrames: %v", err)
	}
	if n != 1 {
		t.Errorf("CountOccludedFrames = %d, want 1", n)
	}
}
