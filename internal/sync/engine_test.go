package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/dl-alexandre/gdsync/internal/profile"
	"github.com/dl-alexandre/gdsync/internal/sync/diff"
	testhelpers "github.com/dl-alexandre/gdsync/internal/testing"
	"github.com/dl-alexandre/gdsync/internal/testing/mocks"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jan = "2024-01-01T00:00:00.000Z"
	feb = "2024-02-01T00:00:00.000Z"
)

func TestEngine_MirrorLocalToDriveConverges(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	testhelpers.WriteLocalFile(t, fs, "/photos/a.jpg", "aaaa", jan)
	testhelpers.WriteLocalFile(t, fs, "/photos/2024/b.jpg", "bb", feb)

	store := mocks.NewMemoryDrive()
	backup := store.AddFolder(mocks.RootID, "Backup")
	stale := store.AddFolder(backup, "stale")
	store.AddFile(stale, "old.jpg", "x", jan)
	store.AddFile(backup, "a.jpg", "old", "2023-01-01T00:00:00.000Z")

	eng := NewEngine(fs, store, nil)
	src := types.LocalLocation("/photos")
	dst := types.DriveLocation("me", backup, "Backup")

	cmp, err := eng.Compare(ctx, src, dst, diff.ModeMirror)
	require.NoError(t, err)
	assert.Equal(t, 3, cmp.SourceCount)
	assert.Equal(t, 3, cmp.TargetCount)

	var actions []string
	for _, r := range cmp.Records {
		actions = append(actions, string(r.Action)+" "+r.Path)
	}
	assert.Equal(t, []string{"create 2024/b.jpg", "update a.jpg", "delete stale", "delete stale/old.jpg"}, actions)

	res, err := eng.Sync(ctx, src, dst, cmp.Records, diff.ModeMirror, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 4, res.ItemsDone)
	assert.Nil(t, store.Lookup("Backup/stale"))
	assert.Equal(t, "aaaa", store.Content(store.Lookup("Backup/a.jpg").ID))

	again, err := eng.Compare(ctx, src, dst, diff.ModeMirror)
	require.NoError(t, err)
	assert.Empty(t, again.Records, "a second compare after sync must be empty")
}

func TestEngine_TwoWayLocalToLocalConverges(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	testhelpers.WriteLocalFile(t, fs, "/left/shared.txt", "left wins", feb)
	testhelpers.WriteLocalFile(t, fs, "/right/shared.txt", "right", jan)
	testhelpers.WriteLocalFile(t, fs, "/left/only-left.txt", "l", jan)
	testhelpers.WriteLocalFile(t, fs, "/right/only-right.txt", "r", jan)

	eng := NewEngine(fs, nil, nil)
	left, right := types.LocalLocation("/left"), types.LocalLocation("/right")

	cmp, err := eng.Compare(ctx, left, right, diff.ModeTwoWay)
	require.NoError(t, err)
	require.Len(t, cmp.Records, 2, "two-way never copies target-only files")

	res, err := eng.Sync(ctx, left, right, cmp.Records, diff.ModeTwoWay, nil, nil)
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	data, _ := afero.ReadFile(fs, "/right/shared.txt")
	assert.Equal(t, "left wins", string(data))

	again, err := eng.Compare(ctx, left, right, diff.ModeTwoWay)
	require.NoError(t, err)
	assert.Empty(t, again.Records)
}

func TestEngine_CompareListingErrorAborts(t *testing.T) {
	store := mocks.NewMemoryDrive()
	boom := errors.New("auth revoked")
	store.FailOn("ListChildren", mocks.RootID, boom)

	eng := NewEngine(afero.NewMemMapFs(), store, nil)
	_, err := eng.Compare(context.Background(), types.LocalLocation("/x"), types.DriveLocation("me", mocks.RootID, ""), diff.ModeMirror)
	assert.ErrorIs(t, err, boom)

	_, err = eng.Compare(context.Background(), types.LocalLocation("/x"), types.LocalLocation("/y"), "nope")
	assert.Error(t, err)
}

func TestEngine_Run(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	testhelpers.WriteLocalFile(t, fs, "/a/one.txt", "1", jan)
	testhelpers.WriteLocalFile(t, fs, "/a/skip.tmp", "tmp", jan)
	testhelpers.WriteLocalFile(t, fs, "/c/two.txt", "2", jan)

	store := mocks.NewMemoryDrive()
	store.FailOn("ListChildren", "broken", mocks.NotFound("broken"))

	p := &profile.Profile{
		Version: profile.CurrentVersion,
		Name:    "multi",
		FolderPairs: []profile.FolderPair{
			{Source: types.LocalLocation("/a"), Target: types.LocalLocation("/b")},
			{Source: types.LocalLocation("/c"), Target: types.DriveLocation("me", "broken", "")},
			{Source: types.LocalLocation("/c"), Target: types.LocalLocation("/d")},
		},
		SyncMode: diff.ModeOneWayLR,
		Exclude:  []string{"*.tmp"},
	}

	var progress []int
	res, err := NewEngine(fs, store, nil).Run(ctx, p, RunOptions{
		OnProgress: func(pair, done, total int, path string) { progress = append(progress, pair) },
	})
	require.NoError(t, err)

	require.Len(t, res.Pairs, 3)
	assert.Equal(t, 2, res.ItemsDone)
	assert.Equal(t, []int{0, 2}, progress)
	assert.NotEmpty(t, res.Pairs[1].Error)
	assert.Len(t, res.Errors, 1)
	assert.False(t, res.Cancelled)

	exists, _ := afero.Exists(fs, "/b/skip.tmp")
	assert.False(t, exists, "excluded files are not copied")
	exists, _ = afero.Exists(fs, "/d/two.txt")
	assert.True(t, exists)
}

func TestEngine_RunDryRunAndConfirm(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	testhelpers.WriteLocalFile(t, fs, "/a/one.txt", "1", jan)
	p := profile.New("p", types.LocalLocation("/a"), types.LocalLocation("/b"), diff.ModeMirror)
	eng := NewEngine(fs, nil, nil)

	res, err := eng.Run(ctx, p, RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.Len(t, res.Pairs[0].Compare.Records, 1)
	assert.False(t, res.Pairs[0].Skipped)
	exists, _ := afero.Exists(fs, "/b/one.txt")
	assert.False(t, exists)

	res, err = eng.Run(ctx, p, RunOptions{Confirm: func(int, profile.FolderPair, diff.Result) bool { return false }})
	require.NoError(t, err)
	assert.True(t, res.Pairs[0].Skipped)
	exists, _ = afero.Exists(fs, "/b/one.txt")
	assert.False(t, exists)
}

// cancellingDrive cancels the run while the remote tree is being listed
type cancellingDrive struct {
	*mocks.MemoryDrive
	cancel context.CancelFunc
}

func (c *cancellingDrive) ListChildren(ctx context.Context, account, folderID string) ([]*types.DriveFile, error) {
	c.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestEngine_RunCancelledDuringCompare(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fs := afero.NewMemMapFs()
	testhelpers.WriteLocalFile(t, fs, "/a/one.txt", "1", jan)
	store := &cancellingDrive{MemoryDrive: mocks.NewMemoryDrive(), cancel: cancel}

	p := &profile.Profile{
		Version: profile.CurrentVersion,
		Name:    "interrupted",
		FolderPairs: []profile.FolderPair{
			{Source: types.LocalLocation("/a"), Target: types.DriveLocation("me", mocks.RootID, "")},
			{Source: types.LocalLocation("/a"), Target: types.LocalLocation("/b")},
		},
		SyncMode: diff.ModeMirror,
	}

	res, err := NewEngine(fs, store, nil).Run(ctx, p, RunOptions{})
	require.NoError(t, err)

	assert.True(t, res.Cancelled)
	assert.Empty(t, res.Errors, "an interrupted listing is not a pair failure")
	assert.Empty(t, res.Pairs, "no pair got past its compare")
	exists, _ := afero.Exists(fs, "/b/one.txt")
	assert.False(t, exists, "later pairs do not run")
}
