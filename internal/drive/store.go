// Package drive exposes the remote object store the sync engine talks to.
// Every operation is keyed by an account handle so one process can sync
// between folders owned by different Google accounts.
package drive

import (
	"context"
	"fmt"

	"github.com/dl-alexandre/gdsync/internal/errors"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
)

// Store is the set of Drive operations the sync engine needs
type Store interface {
	// ListChildren returns every non-trashed child of folderID across all pages
	ListChildren(ctx context.Context, account, folderID string) ([]*types.DriveFile, error)
	// FindChildren returns the non-trashed children of parentID named name
	FindChildren(ctx context.Context, account, parentID, name string) ([]*types.DriveFile, error)
	GetMetadata(ctx context.Context, account, id string) (*types.DriveFile, error)
	CreateFolder(ctx context.Context, account, parentID, name string) (*types.DriveFile, error)
	// UploadContent creates a new file; modTime may be empty
	UploadContent(ctx context.Context, account, parentID, name string, data []byte, modTime string) (*types.DriveFile, error)
	UpdateContent(ctx context.Context, account, fileID string, data []byte, modTime string) (*types.DriveFile, error)
	DownloadContent(ctx context.Context, account, fileID string) ([]byte, error)
	// DeleteItem permanently deletes id. Deleting a missing item succeeds.
	DeleteItem(ctx context.Context, account, id string) error
}

// IsNotFound reports whether err means the item does not exist
func IsNotFound(err error) bool {
	return errors.IsNotFound(err)
}

// IsInaccessible reports whether err means the item cannot be read by the
// account (missing or permission denied)
func IsInaccessible(err error) bool {
	return errors.IsInaccessible(err)
}

// LookupFolder fetches id and fails with INVALID_ARGUMENT unless it is a
// folder
func LookupFolder(ctx context.Context, store Store, account, id string) (*types.DriveFile, error) {
	file, err := store.GetMetadata(ctx, account, id)
	if err != nil {
		return nil, err
	}
	if !utils.IsFolderMimeType(file.MimeType) {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("%s is not a folder", file.Name)).
			WithContext("fileId", id).
			WithContext("mimeType", file.MimeType).
			Build())
	}
	return file, nil
}
