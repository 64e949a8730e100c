package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"casewatch/internal/components/telemetry/telemetrytest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppend(t *testing.T) {
	h := History{}
	_, ok := h.Previous()
	require.False(t, ok)

	for i := 0; i < 25; i++ {
		h = h.Append([]int{i, i, i, i})
		require.LessOrEqual(t, len(h.Entries), MaxEntries)

		prev, ok := h.Previous()
		require.True(t, ok)
		require.Equal(t, []int{i, i, i, i}, prev)
	}

	require.Len(t, h.Entries, MaxEntries)
	require.Equal(t, []int{15, 15, 15, 15}, h.Entries[MaxEntries-1])
}

func TestHistoryAppendDoesNotMutate(t *testing.T) {
	original := History{Entries: [][]int{{1, 2, 3, 4}}}
	counters := []int{5, 6, 7, 8}
	next := original.Append(counters)
	counters[0] = 100

	require.Len(t, original.Entries, 1)
	if diff := cmp.Diff([][]int{{5, 6, 7, 8}, {1, 2, 3, 4}}, next.Entries); diff != "" {
		t.Fatal(diff)
	}
}

type backendFactory struct {
	name string
	open func(t *testing.T) Backend
}

func backends() []backendFactory {
	return []backendFactory{
		{
			name: "json",
			open: func(t *testing.T) Backend {
				return NewJSONFile(filepath.Join(t.TempDir(), "data.json"))
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) Backend {
				db, err := OpenSqlite(":memory:")
				require.NoError(t, err)
				backend, err := NewSQL(context.Background(), db)
				require.NoError(t, err)
				return backend
			},
		},
	}
}

func TestStoreBootstrap(t *testing.T) {
	for _, factory := range backends() {
		t.Run(factory.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewStore(factory.open(t), &telemetrytest.Recorder{})
			defer store.Close()

			h, bootstrapped, err := store.Load(ctx)
			require.NoError(t, err)
			require.True(t, bootstrapped)
			require.Empty(t, h.Entries)

			h, bootstrapped, err = store.Load(ctx)
			require.NoError(t, err)
			require.False(t, bootstrapped)
			require.Empty(t, h.Entries)
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for _, factory := range backends() {
		t.Run(factory.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewStore(factory.open(t), &telemetrytest.Recorder{})
			defer store.Close()

			_, _, err := store.Load(ctx)
			require.NoError(t, err)

			h := History{}
			for i := 0; i < 12; i++ {
				h = h.Append([]int{100 + i, 50, 5, 30})
			}
			require.NoError(t, store.Save(ctx, h))

			loaded, bootstrapped, err := store.Load(ctx)
			require.NoError(t, err)
			require.False(t, bootstrapped)
			if diff := cmp.Diff(h.Entries, loaded.Entries); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestStoreTruncatesOnLoad(t *testing.T) {
	for _, factory := range backends() {
		t.Run(factory.name, func(t *testing.T) {
			ctx := context.Background()
			backend := factory.open(t)

			var entries [][]int
			for i := 0; i < 14; i++ {
				entries = append(entries, []int{i, 0, 0, 0})
			}
			require.NoError(t, backend.Write(ctx, entries))

			tel := &telemetrytest.Recorder{}
			store := NewStore(backend, tel)
			defer store.Close()

			h, _, err := store.Load(ctx)
			require.NoError(t, err)
			require.Len(t, h.Entries, MaxEntries)
			require.Equal(t, []int{0, 0, 0, 0}, h.Entries[0])
			require.True(t, tel.Has(telemetrytest.KindWarning, "history: "+report_store_truncate))
		})
	}
}

func TestJSONFileFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "data.json")
	store := NewStore(NewJSONFile(path), &telemetrytest.Recorder{})

	_, bootstrapped, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, bootstrapped)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"data": []}`, string(contents))

	h := History{}.Append([]int{100, 50, 5, 30}).Append([]int{105, 50, 5, 28})
	require.NoError(t, store.Save(ctx, h))

	contents, err = os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"data": [[105, 50, 5, 28], [100, 50, 5, 30]]}`, string(contents))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestJSONFileReadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data":[[1,2,3,4],[1,2]]}`), 0o600))

	entries, found, err := NewJSONFile(path).Read(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, [][]int{{1, 2, 3, 4}, {1, 2}}, entries)
}

func TestJSONFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data":`), 0o600))

	tel := &telemetrytest.Recorder{}
	_, _, err := NewStore(NewJSONFile(path), tel).Load(context.Background())
	require.Error(t, err)
	require.True(t, tel.Has(telemetrytest.KindBroken, "history: "+report_store_load))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	workdir := t.TempDir()

	backend, err := Open(ctx, Config{}, workdir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(workdir, "data.json"), backend.(JSONFile).Path())

	backend, err = Open(ctx, Config{Driver: DriverSqlite, Path: "state/history.db"}, workdir)
	require.NoError(t, err)
	defer backend.Close()
	_, err = os.Stat(filepath.Join(workdir, "state", "history.db"))
	require.NoError(t, err)

	_, err = Open(ctx, Config{Driver: DriverLibsql}, workdir)
	require.Error(t, err)

	_, err = Open(ctx, Config{Driver: "postgres"}, workdir)
	require.Error(t, err)
}

func TestSQLSchemaIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	_, err = NewSQL(context.Background(), db)
	require.NoError(t, err)
	_, err = NewSQL(context.Background(), db)
	require.NoError(t, err)
}
