package remote_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wtf/pkg/adapters/fs"
	"github.com/aretw0/wtf/pkg/core"
	"github.com/aretw0/wtf/pkg/remote"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type engineFixture struct {
	fake   *fakeGitHub
	client *remote.Client
	repo   *fs.Repository
	engine *remote.Engine
	dict   *core.Dictionary
}

func setupEngine(t *testing.T, opts ...remote.EngineOption) *engineFixture {
	t.Helper()
	fake, srv := newFakeGitHub(t)

	repo := fs.NewRepository(fs.Config{Path: filepath.Join(t.TempDir(), ".wtf")})
	require.NoError(t, repo.Initialize(context.Background()))

	opts = append([]remote.EngineOption{remote.WithClock(func() time.Time { return fixedNow })}, opts...)
	client := newTestClient(srv)
	engine := remote.NewEngine(client, repo, repo, opts...)

	return &engineFixture{fake: fake, client: client, repo: repo, engine: engine, dict: core.NewDictionary()}
}

func (f *engineFixture) seed(t *testing.T, base string, meta core.SyncMetadata) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.repo.WriteSnapshot(ctx, []byte(base)))
	require.NoError(t, f.repo.SaveMetadata(ctx, meta))
	snap, err := f.repo.Load(ctx)
	require.NoError(t, err)
	for _, e := range snap.Entries {
		f.dict.Insert(e.Term, e.Definition)
	}
}

func TestEngine_UpToDate(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	f.seed(t, "lit:on fire\n", core.SyncMetadata{LastVersion: "v1", AutoSync: true, SyncInterval: time.Minute})
	f.fake.set("v1", "should never be downloaded\n")

	before, err := os.Stat(f.repo.BasePath())
	require.NoError(t, err)

	report, err := f.engine.Sync(ctx, f.dict, false)
	require.NoError(t, err)
	assert.Equal(t, core.StatusUpToDate, report.Status)
	assert.Equal(t, core.ModeNone, report.Mode)
	assert.Zero(t, f.fake.count("snapshot"))
	assert.Zero(t, f.fake.count("compare"))

	after, err := os.Stat(f.repo.BasePath())
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime(), "snapshot must not be rewritten")

	meta, err := f.repo.LoadMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Unix(), meta.LastSync.Unix(), "last sync refreshed")
	assert.Equal(t, "v1", meta.LastVersion)
}

func TestEngine_FullSyncWithoutPriorVersion(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	f.fake.set("v2", "rizz:charisma\nlit:amazing\n")
	f.fake.gzip = true

	var progress int
	f.engine = remote.NewEngine(f.client, f.repo, f.repo,
		remote.WithClock(func() time.Time { return fixedNow }),
		remote.WithProgress(func(*remote.Transfer) { progress++ }),
	)

	report, err := f.engine.Sync(ctx, f.dict, false)
	require.NoError(t, err)
	assert.Equal(t, core.StatusNeedsSync, report.Status)
	assert.Equal(t, core.ModeFull, report.Mode)
	assert.Equal(t, "v2", report.Version)
	assert.Equal(t, 2, report.Added)
	assert.Positive(t, progress)

	onDisk, err := f.repo.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, onDisk, f.dict.Entries(), "reloaded store equals the new file")

	meta, err := f.repo.LoadMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", meta.LastVersion)
}

func TestEngine_FullSyncReloadKeepsUserAdditions(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	require.NoError(t, f.repo.AppendAdded(ctx, core.Entry{Term: "mine", Definition: "local only"}))
	f.fake.set("v1", "lit:on fire\n")

	_, err := f.engine.Sync(ctx, f.dict, true)
	require.NoError(t, err)
	assert.True(t, f.dict.Contains("mine", "local only"))
	assert.True(t, f.dict.Contains("lit", "on fire"))
}

func TestEngine_DeltaSync(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	f.seed(t, "term2:def2\nlit:on fire\n", core.SyncMetadata{LastVersion: "v1", AutoSync: true})
	f.fake.set("v2", "")
	f.fake.patches["v1...v2"] = "@@ -1,2 +1,2 @@\n+term1:def1\n-term2:def2\n lit:on fire"

	report, err := f.engine.Sync(ctx, f.dict, false)
	require.NoError(t, err)
	assert.Equal(t, core.StatusNeedsSync, report.Status)
	assert.Equal(t, core.ModeDelta, report.Mode)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 1, report.Deleted)
	assert.Zero(t, f.fake.count("snapshot"))

	assert.True(t, f.dict.Contains("term1", "def1"))
	assert.False(t, f.dict.Contains("term2", "def2"))

	// The persisted snapshot carries the same change.
	onDisk, err := f.repo.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []core.Entry{
		{Term: "lit", Definition: "on fire"},
		{Term: "term1", Definition: "def1"},
	}, onDisk)

	meta, err := f.repo.LoadMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", meta.LastVersion)
}

func TestEngine_DeltaOverlappingUserAdditions(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	require.NoError(t, f.repo.AppendAdded(ctx, core.Entry{Term: "rizz", Definition: "charisma"}))
	require.NoError(t, f.repo.AppendAdded(ctx, core.Entry{Term: "mine", Definition: "local only"}))
	f.seed(t, "lit:on fire\n", core.SyncMetadata{LastVersion: "v1", AutoSync: true})
	f.fake.set("v2", "")
	f.fake.patches["v1...v2"] = "+rizz:charisma\n-mine:local only\n+yolo:you only live once"

	report, err := f.engine.Sync(ctx, f.dict, false)
	require.NoError(t, err)
	assert.Equal(t, core.ModeDelta, report.Mode)
	assert.Equal(t, 1, report.Added)
	assert.Zero(t, report.Deleted, "user additions are not part of the snapshot")

	// A fresh load sees exactly what the engine left in memory.
	snap, err := f.repo.Load(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, snap.Entries, f.dict.Entries())

	fresh := core.NewService(f.repo)
	got, err := fresh.Lookup(ctx, "rizz")
	require.NoError(t, err)
	assert.Equal(t, []core.Entry{{Term: "rizz", Definition: "charisma"}}, got)

	got, err = fresh.Lookup(ctx, "mine")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	onDisk, err := f.repo.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Entry{
		{Term: "lit", Definition: "on fire"},
		{Term: "yolo", Definition: "you only live once"},
	}, onDisk)
}

func TestEngine_FullSyncKeepsDefinitionsVerbatim(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	f.fake.set("v1", "lit: on fire \ntime:12:30\n")

	_, err := f.engine.Sync(ctx, f.dict, false)
	require.NoError(t, err)
	assert.Equal(t, []core.Entry{
		{Term: "lit", Definition: " on fire "},
		{Term: "time", Definition: "12:30"},
	}, f.dict.Entries())

	data, err := os.ReadFile(f.repo.BasePath())
	require.NoError(t, err)
	assert.Equal(t, "lit: on fire \ntime:12:30\n", string(data))
}

func TestEngine_DeltaUnavailableFallsBack(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	f.seed(t, "old:entry\n", core.SyncMetadata{LastVersion: "v1", AutoSync: true})
	f.fake.set("v2", "new:entry\n")
	f.fake.noPatch["v1...v2"] = true

	report, err := f.engine.Sync(ctx, f.dict, false)
	require.NoError(t, err)
	assert.Equal(t, core.ModeFull, report.Mode)
	assert.Equal(t, []core.Entry{{Term: "new", Definition: "entry"}}, f.dict.Entries())
}

func TestEngine_ForceDownloadsEvenWhenEqual(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	f.seed(t, "lit:on fire\n", core.SyncMetadata{LastVersion: "v1", AutoSync: true})
	f.fake.set("v1", "lit:on fire\nyolo:you only live once\n")

	report, err := f.engine.Sync(ctx, f.dict, true)
	require.NoError(t, err)
	assert.Equal(t, core.StatusNeedsSync, report.Status)
	assert.Equal(t, core.ModeFull, report.Mode)
	assert.Equal(t, 1, f.fake.count("snapshot"))
}

func TestEngine_NoNetwork(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeGitHub(t)
	repo := fs.NewRepository(fs.Config{Path: t.TempDir()})
	engine := remote.NewEngine(newTestClient(srv), repo, repo)
	srv.Close()

	report, err := engine.Sync(ctx, core.NewDictionary(), false)
	assert.ErrorIs(t, err, core.ErrNoNetwork)
	assert.Equal(t, core.StatusNoNetwork, report.Status)

	_, statErr := os.Stat(repo.MetadataPath())
	assert.True(t, os.IsNotExist(statErr), "metadata untouched")

	state := engine.State().(remote.EngineState)
	assert.Equal(t, core.StatusNoNetwork, state.Status)
	assert.NotEmpty(t, state.LastError)
}

func TestEngine_FailedDownloadTouchesNothing(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	f.seed(t, "lit:on fire\n", core.SyncMetadata{LastVersion: "v1", AutoSync: true})
	f.fake.set("v2", "")
	f.fake.patches["v1...v2"] = "@@ -1 +1 @@\n<garbage>"

	report, err := f.engine.Sync(ctx, f.dict, false)
	assert.ErrorIs(t, err, core.ErrParse)
	assert.Equal(t, core.StatusError, report.Status)

	onDisk, err := f.repo.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Entry{{Term: "lit", Definition: "on fire"}}, onDisk)
	assert.Equal(t, []core.Entry{{Term: "lit", Definition: "on fire"}}, f.dict.Entries())

	meta, err := f.repo.LoadMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1", meta.LastVersion, "version must not advance")
}

func TestEngine_DueAndConfigure(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)

	due, err := f.engine.Due(ctx)
	require.NoError(t, err)
	assert.True(t, due, "never synced")

	require.NoError(t, f.repo.SaveMetadata(ctx, core.SyncMetadata{LastSync: fixedNow.Add(-30 * time.Second), AutoSync: true, SyncInterval: time.Minute}))
	due, err = f.engine.Due(ctx)
	require.NoError(t, err)
	assert.False(t, due)

	off := false
	meta, err := f.engine.ConfigureSync(ctx, &off, nil)
	require.NoError(t, err)
	assert.False(t, meta.AutoSync)
	assert.Equal(t, time.Minute, meta.SyncInterval)

	interval := 10 * time.Second
	meta, err = f.engine.ConfigureSync(ctx, nil, &interval)
	require.NoError(t, err)
	assert.Equal(t, interval, meta.SyncInterval)

	tiny := time.Millisecond
	_, err = f.engine.ConfigureSync(ctx, nil, &tiny)
	assert.Error(t, err)
}

func TestEngine_ThroughService(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	f.fake.set("v1", "lit:on fire\nlit:amazing\n")

	svc := core.NewService(f.repo, core.WithSynchronizer(f.engine))
	report, ran := svc.AutoSync(ctx)
	require.True(t, ran)
	assert.Equal(t, core.StatusNeedsSync, report.Status)

	got, err := svc.Lookup(ctx, "LIT")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Tombstones survive a forced snapshot replacement.
	require.NoError(t, svc.Remove(ctx, "lit", "amazing"))
	_, err = svc.Sync(ctx, true)
	require.NoError(t, err)

	got, err = svc.Lookup(ctx, "lit")
	require.NoError(t, err)
	assert.Equal(t, []core.Entry{{Term: "lit", Definition: "on fire"}}, got)

	state := f.engine.State().(remote.EngineState)
	assert.Equal(t, core.StatusNeedsSync, state.Status)
	assert.Equal(t, testRepo, state.Repo)
}
