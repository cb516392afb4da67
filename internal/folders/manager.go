package folders

import (
	"context"

	"github.com/dl-alexandre/gdsync/internal/api"
	"github.com/dl-alexandre/gdsync/internal/files"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"google.golang.org/api/drive/v3"
)

// Manager handles folder operations
type Manager struct {
	client *api.Client
	files  *files.Manager
}

// NewManager creates a new folder manager
func NewManager(client *api.Client) *Manager {
	return &Manager{
		client: client,
		files:  files.NewManager(client),
	}
}

// Create creates a new folder under parentID
func (m *Manager) Create(ctx context.Context, reqCtx *types.RequestContext, name string, parentID string) (*types.DriveFile, error) {
	metadata := &drive.File{
		Name:     name,
		MimeType: utils.MimeTypeFolder,
	}
	if parentID != "" {
		metadata.Parents = []string{parentID}
		m.client.WithParentIDs(reqCtx, parentID)
	}

	result, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*drive.File, error) {
		return m.client.Service().Files.Create(metadata).
			SupportsAllDrives(true).
			Fields(utils.DriveFileFields).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, err
	}

	return &types.DriveFile{
		ID:           result.Id,
		Name:         result.Name,
		MimeType:     result.MimeType,
		CreatedTime:  result.CreatedTime,
		ModifiedTime: result.ModifiedTime,
		Parents:      result.Parents,
	}, nil
}

// List lists one page of folder contents
func (m *Manager) List(ctx context.Context, reqCtx *types.RequestContext, folderID string, pageSize int, pageToken string) (*types.FileListResult, error) {
	return m.files.List(ctx, reqCtx, files.ListOptions{
		ParentID:  folderID,
		PageSize:  pageSize,
		PageToken: pageToken,
	})
}
