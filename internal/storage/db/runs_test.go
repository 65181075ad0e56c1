package db

import (
	"path/filepath"
	"testing"
	"time"

	"tslpm/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func sampleRun() (Run, []domain.PatchResult) {
	now := time.Now()
	run := Run{
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
		Summary: domain.RunSummary{
			Processed: 2, Succeeded: 1, Failed: 1, Skipped: 0, Missing: 3,
		},
	}
	results := []domain.PatchResult{
		{ModName: "Alpha", PatchName: "Default", Status: domain.StatusSucceeded, LogPath: "/logs/Alpha/Default-installlog.txt"},
		{ModName: "Beta", PatchName: "Default", Status: domain.StatusFailed, ExitCode: 2, Reason: "patcher exited with code 2"},
	}
	return run, results
}

func TestSaveRun_RoundTrip(t *testing.T) {
	d := testDB(t)
	run, results := sampleRun()

	runID, err := d.SaveRun(run, results)
	require.NoError(t, err)
	require.Greater(t, runID, int64(0))

	runs, err := d.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, 2, runs[0].Summary.Processed)
	assert.Equal(t, 3, runs[0].Summary.Missing)

	got, err := d.GetRunResults(runID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].ModName)
	assert.Equal(t, domain.StatusSucceeded, got[0].Status)
	assert.Equal(t, "Beta", got[1].ModName)
	assert.Equal(t, domain.StatusFailed, got[1].Status)
	assert.Equal(t, 2, got[1].ExitCode)
	assert.Equal(t, "patcher exited with code 2", got[1].Reason)
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	d := testDB(t)

	var lastID int64
	for i := 0; i < 5; i++ {
		run, _ := sampleRun()
		id, err := d.SaveRun(run, nil)
		require.NoError(t, err)
		lastID = id
	}

	runs, err := d.ListRuns(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, lastID, runs[0].ID)
	assert.Greater(t, runs[0].ID, runs[1].ID)
}

func TestListRuns_DefaultLimit(t *testing.T) {
	d := testDB(t)
	run, _ := sampleRun()
	_, err := d.SaveRun(run, nil)
	require.NoError(t, err)

	runs, err := d.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestGetRunResults_UnknownRun(t *testing.T) {
	d := testDB(t)

	results, err := d.GetRunResults(999)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := New(path)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	// Reopening reruns migrations against an up-to-date schema
	d, err = New(path)
	require.NoError(t, err)
	defer d.Close()

	runs, err := d.ListRuns(1)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
