package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wtf/pkg/adapters/fs"
	"github.com/aretw0/wtf/pkg/core"
)

// setupRepo creates a repository rooted in a fresh temp directory.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	home := filepath.Join(t.TempDir(), ".wtf")
	cfg := fs.Config{Path: home}
	for _, opt := range opts {
		opt(&cfg)
	}
	return fs.NewRepository(cfg), home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		repo, home := setupRepo(t)
		require.NoError(t, repo.Initialize(context.Background()))

		info, err := os.Stat(filepath.Join(home, fs.DefaultResDir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		repo, _ := setupRepo(t, func(c *fs.Config) { c.MustExist = true })
		assert.Error(t, repo.Initialize(context.Background()))
	})

	t.Run("Fails if Path is a File", func(t *testing.T) {
		repo, home := setupRepo(t, func(c *fs.Config) { c.MustExist = true })
		writeFile(t, home, "not a dir")
		assert.Error(t, repo.Initialize(context.Background()))
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Files Load Empty", func(t *testing.T) {
		repo, _ := setupRepo(t)
		snap, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Entries)
		assert.Empty(t, snap.Removed)
	})

	t.Run("Merges Base Before Added", func(t *testing.T) {
		repo, _ := setupRepo(t)
		writeFile(t, repo.BasePath(), "lit:on fire\nyolo:you only live once\n")
		writeFile(t, repo.AddedPath(), "lit:amazing\n")
		writeFile(t, repo.RemovedPath(), "yolo:you only live once\n")

		snap, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Entry{
			{Term: "lit", Definition: "on fire"},
			{Term: "yolo", Definition: "you only live once"},
			{Term: "lit", Definition: "amazing"},
		}, snap.Entries)
		assert.Equal(t, []core.Entry{{Term: "yolo", Definition: "you only live once"}}, snap.Removed)
		assert.Equal(t, 2, snap.Base)
		assert.Equal(t, []core.Entry{{Term: "lit", Definition: "amazing"}}, snap.AddedEntries())
		assert.Len(t, snap.BaseEntries(), 2)

		state := repo.State().(fs.RepositoryState)
		assert.Equal(t, 2, state.Records.Base)
		assert.Equal(t, 1, state.Records.Added)
		assert.Equal(t, 1, state.Records.Removed)
		assert.NotNil(t, state.LastLoad)
	})
}

func TestAppendAndDrop(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)
	writeFile(t, repo.BasePath(), "lit:on fire\n")

	require.NoError(t, repo.AppendAdded(ctx, core.Entry{Term: "lit", Definition: "amazing"}))
	require.NoError(t, repo.AppendRemoved(ctx, core.Entry{Term: "lit", Definition: "on fire"}))
	require.NoError(t, repo.AppendRemoved(ctx, core.Entry{Term: "yolo", Definition: "x"}))
	require.NoError(t, repo.AppendRemoved(ctx, core.Entry{Term: "LIT", Definition: "on fire"}))

	assert.Equal(t, "lit:on fire\n", readFile(t, repo.BasePath()), "base is never touched by overlays")
	assert.Equal(t, "lit:amazing\n", readFile(t, repo.AddedPath()))

	n, err := repo.DropRemoved(ctx, core.Entry{Term: "Lit", Definition: "on fire"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "yolo:x\n", readFile(t, repo.RemovedPath()))

	n, err = repo.DropRemoved(ctx, core.Entry{Term: "nope", Definition: "x"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWriteSnapshot(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)
	writeFile(t, repo.BasePath(), "old:entry\n")

	require.NoError(t, repo.WriteSnapshot(ctx, []byte("new:entry\nlit:on fire\n")))

	entries, err := repo.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Entry{
		{Term: "new", Definition: "entry"},
		{Term: "lit", Definition: "on fire"},
	}, entries)
	assert.Equal(t, 2, repo.State().(fs.RepositoryState).Records.Base)
}

func TestWriteEntries(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)
	entries := []core.Entry{
		{Term: "lit", Definition: " on fire "},
		{Term: "time", Definition: "12:30"},
	}

	require.NoError(t, repo.WriteEntries(ctx, entries))
	assert.Equal(t, "lit: on fire \ntime:12:30\n", readFile(t, repo.BasePath()))

	back, err := repo.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, back)
}

func TestReadOnly(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t, func(c *fs.Config) { c.ReadOnly = true })
	e := core.Entry{Term: "lit", Definition: "on fire"}

	assert.ErrorIs(t, repo.AppendAdded(ctx, e), core.ErrReadOnly)
	assert.ErrorIs(t, repo.AppendRemoved(ctx, e), core.ErrReadOnly)
	_, err := repo.DropRemoved(ctx, e)
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.ErrorIs(t, repo.WriteSnapshot(ctx, nil), core.ErrReadOnly)
	assert.ErrorIs(t, repo.WriteEntries(ctx, []core.Entry{e}), core.ErrReadOnly)
	assert.ErrorIs(t, repo.SaveMetadata(ctx, core.DefaultSyncMetadata()), core.ErrReadOnly)
}

func TestServiceOverRepository(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)
	require.NoError(t, repo.Initialize(ctx))

	svc := core.NewService(repo)
	require.NoError(t, svc.Add(ctx, "lit", "on fire"))
	require.NoError(t, svc.Add(ctx, "lit", "amazing"))
	require.NoError(t, svc.Remove(ctx, "lit", "amazing"))

	// A fresh service sees the same state from disk.
	again := core.NewService(repo)
	got, err := again.Lookup(ctx, "LIT")
	require.NoError(t, err)
	assert.Equal(t, []core.Entry{{Term: "lit", Definition: "on fire"}}, got)

	require.NoError(t, again.Recover(ctx, "lit", "amazing"))
	got, err = core.NewService(repo).Lookup(ctx, "lit")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Empty(t, readFile(t, repo.RemovedPath()))
}
