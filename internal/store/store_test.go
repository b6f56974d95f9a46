package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
	"github.com/roach88/linkgraph/internal/report"
	"github.com/roach88/linkgraph/internal/testutil"
	"github.com/roach88/linkgraph/internal/traverser"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// openTestStore opens a store in a temp dir with deterministic IDs and
// timestamps.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path,
		WithClock(testutil.NewStepClock()),
		WithIDGenerator(&testutil.SequentialIDs{}),
		WithLogger(quiet),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func product(target, name string, filters ...platform.Filter) traverser.Reference {
	return traverser.Reference{
		Kind:        traverser.RefProduct,
		Target:      target,
		ProductName: name,
		Condition:   platform.When(filters...),
	}
}

func shopReports() []report.TargetReport {
	return []report.TargetReport{
		{
			Target:  "/ws/App:Core",
			Project: "/ws/App",
			Name:    "Core",
			Product: graph.StaticLibrary,
		},
		{
			Target:             "/ws/App:App",
			Project:            "/ws/App",
			Name:               "App",
			Product:            graph.App,
			Linkable:           []traverser.Reference{product("Core", "libCore.a", platform.FilterIOS)},
			Searchable:         []traverser.Reference{product("Core", "libCore.a", platform.FilterIOS)},
			LibrarySearchPaths: []string{"/libs/ssl"},
			TargetDependencies: []string{"/ws/App:Core"},
		},
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(path, WithLogger(quiet))
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path, WithLogger(quiet))
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := openTestStore(t)

	cases := map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"busy_timeout": "5000",
		"user_version": "1",
	}
	for name, want := range cases {
		got, err := s.pragma(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "runs.db"), WithLogger(quiet))
	assert.Error(t, err)
}

func TestSaveRun_AssignsIDAndTimestamp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.SaveRun(ctx, Run{GraphName: "Shop", GraphPath: "/ws", Fingerprint: "abc"})
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, Run{GraphName: "Shop", GraphPath: "/ws", Fingerprint: "abc"})
	require.NoError(t, err)

	assert.Equal(t, "run-0001", first.ID)
	assert.Equal(t, "run-0002", second.ID)
	assert.True(t, first.CreatedAt.Equal(testutil.Epoch))
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
}

func TestSaveRun_DefaultIDIsUUIDv7(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"), WithLogger(quiet))
	require.NoError(t, err)
	defer s.Close()

	run, err := s.SaveRun(context.Background(), Run{GraphName: "Shop", GraphPath: "/ws", Fingerprint: "abc"})
	require.NoError(t, err)

	id, err := uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.False(t, run.CreatedAt.IsZero())
}

func TestSaveRun_DuplicateIDFails(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SaveRun(ctx, Run{ID: "fixed", GraphName: "Shop", GraphPath: "/ws", Fingerprint: "abc"})
	require.NoError(t, err)
	_, err = s.SaveRun(ctx, Run{ID: "fixed", GraphName: "Shop", GraphPath: "/ws", Fingerprint: "abc"})
	assert.Error(t, err)
}

func TestLoadRun_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveRun(ctx, Run{
		GraphName:   "Shop",
		GraphPath:   "/ws",
		Fingerprint: "abc",
		Reports:     shopReports(),
	})
	require.NoError(t, err)

	loaded, err := s.LoadRun(ctx, saved.ID)
	require.NoError(t, err)

	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, "Shop", loaded.GraphName)
	assert.Equal(t, "/ws", loaded.GraphPath)
	assert.Equal(t, "abc", loaded.Fingerprint)
	assert.True(t, saved.CreatedAt.Equal(loaded.CreatedAt))

	// Reports come back ordered by target.
	want := shopReports()
	assert.Equal(t, []report.TargetReport{want[1], want[0]}, loaded.Reports)
}

func TestLoadRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadRun(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestLatestRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.SaveRun(ctx, Run{GraphName: "Shop", GraphPath: "/ws", Fingerprint: "one"})
	require.NoError(t, err)
	_, err = s.SaveRun(ctx, Run{GraphName: "Shop", GraphPath: "/ws", Fingerprint: "two", Reports: shopReports()})
	require.NoError(t, err)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-0002", latest.ID)
	assert.Equal(t, "two", latest.Fingerprint)
	assert.Len(t, latest.Reports, 2)
}

func TestListAndDeleteRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	for range 3 {
		_, err := s.SaveRun(ctx, Run{GraphName: "Shop", GraphPath: "/ws", Fingerprint: "abc", Reports: shopReports()})
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteRun(ctx, "run-0002"))
	assert.ErrorIs(t, s.DeleteRun(ctx, "run-0002"), ErrRunNotFound)

	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
		assert.Empty(t, r.Reports)
	}
	assert.Equal(t, []string{"run-0001", "run-0003"}, ids)

	var orphans int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM target_reports WHERE run_id = 'run-0002'`).Scan(&orphans))
	assert.Zero(t, orphans, "reports cascade with their run")
}

func TestSaveRun_CanceledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SaveRun(ctx, Run{GraphName: "Shop", GraphPath: "/ws", Fingerprint: "abc", Reports: shopReports()})
	require.Error(t, err)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}
