package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dl-alexandre/gdsync/internal/api"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// Manager handles file operations
type Manager struct {
	client *api.Client
}

// NewManager creates a new file manager
func NewManager(client *api.Client) *Manager {
	return &Manager{client: client}
}

// UploadOptions configures file upload
type UploadOptions struct {
	ParentID     string
	Name         string
	MimeType     string
	ModifiedTime string // RFC 3339; empty leaves the server's time
}

// UpdateContentOptions configures a content replacement
type UpdateContentOptions struct {
	ModifiedTime string
}

// ListOptions configures file listing
type ListOptions struct {
	ParentID       string
	Query          string
	PageSize       int
	PageToken      string
	OrderBy        string
	IncludeTrashed bool
	Fields         string
}

// Upload creates a new file with the given content
func (m *Manager) Upload(ctx context.Context, reqCtx *types.RequestContext, content []byte, opts UploadOptions) (*types.DriveFile, error) {
	if opts.Name == "" {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, "upload requires a file name").Build())
	}

	metadata := &drive.File{
		Name:         opts.Name,
		MimeType:     opts.MimeType,
		ModifiedTime: opts.ModifiedTime,
	}
	if opts.ParentID != "" {
		metadata.Parents = []string{opts.ParentID}
		m.client.WithParentIDs(reqCtx, opts.ParentID)
	}

	result, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*drive.File, error) {
		call := m.client.Service().Files.Create(metadata).
			Media(bytes.NewReader(content), mediaOptions(len(content))...).
			SupportsAllDrives(true).
			Fields(utils.DriveFileFields).
			Context(ctx)
		return call.Do()
	})
	if err != nil {
		return nil, err
	}
	return convertDriveFile(result), nil
}

// UpdateContent replaces the bytes of an existing file
func (m *Manager) UpdateContent(ctx context.Context, reqCtx *types.RequestContext, fileID string, content []byte, opts UpdateContentOptions) (*types.DriveFile, error) {
	m.client.WithFileIDs(reqCtx, fileID)

	metadata := &drive.File{ModifiedTime: opts.ModifiedTime}

	result, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*drive.File, error) {
		call := m.client.Service().Files.Update(fileID, metadata).
			Media(bytes.NewReader(content), mediaOptions(len(content))...).
			SupportsAllDrives(true).
			Fields(utils.DriveFileFields).
			Context(ctx)
		return call.Do()
	})
	if err != nil {
		return nil, err
	}
	return convertDriveFile(result), nil
}

// mediaOptions picks a resumable chunked session for large content
func mediaOptions(size int) []googleapi.MediaOption {
	if size > utils.UploadSimpleMaxBytes {
		return []googleapi.MediaOption{googleapi.ChunkSize(utils.UploadChunkSize)}
	}
	return nil
}

// Download streams a file's bytes into w
func (m *Manager) Download(ctx context.Context, reqCtx *types.RequestContext, fileID string, w io.Writer) error {
	m.client.WithFileIDs(reqCtx, fileID)

	resp, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*http.Response, error) {
		return m.client.Service().Files.Get(fileID).
			SupportsAllDrives(true).
			Context(ctx).
			Download()
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeNetworkError,
			fmt.Sprintf("Download failed: %s", err)).
			WithRetryable(true).
			WithContext("fileId", fileID).
			Build())
	}
	return nil
}

// Get retrieves file metadata
func (m *Manager) Get(ctx context.Context, reqCtx *types.RequestContext, fileID string, fields string) (*types.DriveFile, error) {
	m.client.WithFileIDs(reqCtx, fileID)
	if fields == "" {
		fields = utils.DriveFileFields
	}

	result, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*drive.File, error) {
		return m.client.Service().Files.Get(fileID).
			SupportsAllDrives(true).
			Fields(googleapi.Field(fields)).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, err
	}
	return convertDriveFile(result), nil
}

// List lists one page of files
func (m *Manager) List(ctx context.Context, reqCtx *types.RequestContext, opts ListOptions) (*types.FileListResult, error) {
	query := ""
	if opts.ParentID != "" {
		query = fmt.Sprintf("'%s' in parents", utils.EscapeQueryValue(opts.ParentID))
		m.client.WithParentIDs(reqCtx, opts.ParentID)
	}
	if !opts.IncludeTrashed {
		if query != "" {
			query += " and "
		}
		query += "trashed = false"
	}
	if opts.Query != "" {
		if query != "" {
			query += " and "
		}
		query += opts.Query
	}

	fields := opts.Fields
	if fields == "" {
		fields = utils.DriveFileFields
	}

	result, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*drive.FileList, error) {
		call := m.client.Service().Files.List().
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Fields(googleapi.Field("nextPageToken,incompleteSearch,files(" + fields + ")")).
			Context(ctx)
		if query != "" {
			call = call.Q(query)
		}
		if opts.PageSize > 0 {
			call = call.PageSize(int64(opts.PageSize))
		}
		if opts.PageToken != "" {
			call = call.PageToken(opts.PageToken)
		}
		if opts.OrderBy != "" {
			call = call.OrderBy(opts.OrderBy)
		}
		return call.Do()
	})
	if err != nil {
		return nil, err
	}

	files := make([]*types.DriveFile, len(result.Files))
	for i, f := range result.Files {
		files[i] = convertDriveFile(f)
	}

	return &types.FileListResult{
		Files:            files,
		NextPageToken:    result.NextPageToken,
		IncompleteSearch: result.IncompleteSearch,
	}, nil
}

// ListAll lists all files by following pagination
func (m *Manager) ListAll(ctx context.Context, reqCtx *types.RequestContext, opts ListOptions) ([]*types.DriveFile, error) {
	var allFiles []*types.DriveFile
	pageToken := opts.PageToken

	for {
		opts.PageToken = pageToken
		result, err := m.List(ctx, reqCtx, opts)
		if err != nil {
			return allFiles, err
		}

		allFiles = append(allFiles, result.Files...)

		if result.NextPageToken == "" {
			break
		}
		pageToken = result.NextPageToken
	}

	return allFiles, nil
}

// FindByName lists the non-trashed children of parentID called name
func (m *Manager) FindByName(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) ([]*types.DriveFile, error) {
	return m.ListAll(ctx, reqCtx, ListOptions{
		ParentID: parentID,
		Query:    fmt.Sprintf("name = '%s'", utils.EscapeQueryValue(name)),
		PageSize: utils.DefaultPageSize,
	})
}

// Delete permanently deletes a file, bypassing the trash
func (m *Manager) Delete(ctx context.Context, reqCtx *types.RequestContext, fileID string) error {
	m.client.WithFileIDs(reqCtx, fileID)

	_, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (struct{}, error) {
		return struct{}{}, m.client.Service().Files.Delete(fileID).
			SupportsAllDrives(true).
			Context(ctx).
			Do()
	})
	return err
}

func convertDriveFile(f *drive.File) *types.DriveFile {
	return &types.DriveFile{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Size:         f.Size,
		MD5Checksum:  f.Md5Checksum,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
		Parents:      f.Parents,
		ResourceKey:  f.ResourceKey,
		Trashed:      f.Trashed,
	}
}
