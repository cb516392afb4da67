package mocks_test

import (
	"errors"
	"testing"

	testhelpers "github.com/dl-alexandre/gdsync/internal/testing"
	"github.com/dl-alexandre/gdsync/internal/testing/mocks"
)

func TestMemoryDrive_TreeOperations(t *testing.T) {
	ctx := testhelpers.TestContext()
	m := mocks.NewMemoryDrive()

	docs := m.AddFolder(mocks.RootID, "docs")
	fileID := m.AddFile(docs, "a.txt", "hello", "2024-01-01T00:00:00.000Z")

	children, err := m.ListChildren(ctx, "me", docs)
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, len(children), 1)
	testhelpers.AssertEqual(t, children[0].Size, int64(5))

	found := m.Lookup("docs/a.txt")
	if found == nil || found.ID != fileID {
		t.Fatalf("Lookup(docs/a.txt) = %+v", found)
	}

	testhelpers.AssertEqual(t, m.Count(), 3)
	testhelpers.AssertNoError(t, m.DeleteItem(ctx, "me", docs))
	testhelpers.AssertEqual(t, m.Count(), 1)
	if m.Lookup("docs/a.txt") != nil {
		t.Error("child should be removed with its folder")
	}
	testhelpers.AssertNoError(t, m.DeleteItem(ctx, "me", docs), "deleting a missing item")
	testhelpers.AssertEqual(t, m.CallCount("DeleteItem"), 2)
}

func TestMemoryDrive_FailOn(t *testing.T) {
	ctx := testhelpers.TestContext()
	m := mocks.NewMemoryDrive()
	boom := errors.New("boom")

	m.FailOn("DownloadContent", "", boom)
	_, err := m.DownloadContent(ctx, "me", "anything")
	if !errors.Is(err, boom) {
		t.Fatalf("DownloadContent err = %v, want boom", err)
	}

	_, err = m.GetMetadata(ctx, "me", "missing")
	testhelpers.AssertError(t, err)
}
