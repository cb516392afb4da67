package drive

import (
	"bytes"
	"context"
	"sync"

	"github.com/dl-alexandre/gdsync/internal/api"
	"github.com/dl-alexandre/gdsync/internal/files"
	"github.com/dl-alexandre/gdsync/internal/folders"
	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"google.golang.org/api/drive/v3"
)

// ServiceProvider builds an authenticated Drive service for an account.
// auth.Manager satisfies it.
type ServiceProvider interface {
	DriveService(ctx context.Context, account string) (*drive.Service, error)
}

// Options configures retry behavior for every account client
type Options struct {
	MaxRetries   int
	RetryDelayMs int
	Logger       logging.Logger
}

// Service implements Store over the Drive v3 API
type Service struct {
	provider ServiceProvider
	opts     Options

	mu       sync.Mutex
	accounts map[string]*accountClient
}

type accountClient struct {
	files   *files.Manager
	folders *folders.Manager
	api     *api.Client
}

var _ Store = (*Service)(nil)

// NewService creates a Drive-backed Store
func NewService(provider ServiceProvider, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logging.NewNoOpLogger()
	}
	return &Service{
		provider: provider,
		opts:     opts,
		accounts: make(map[string]*accountClient),
	}
}

func (s *Service) client(ctx context.Context, account string) (*accountClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.accounts[account]; ok {
		return c, nil
	}

	svc, err := s.provider.DriveService(ctx, account)
	if err != nil {
		return nil, err
	}
	apiClient := api.NewClient(svc, account, s.opts.MaxRetries, s.opts.RetryDelayMs, s.opts.Logger)
	c := &accountClient{
		files:   files.NewManager(apiClient),
		folders: folders.NewManager(apiClient),
		api:     apiClient,
	}
	s.accounts[account] = c
	return c, nil
}

func (s *Service) ListChildren(ctx context.Context, account, folderID string) ([]*types.DriveFile, error) {
	c, err := s.client(ctx, account)
	if err != nil {
		return nil, err
	}
	reqCtx := c.api.RequestContext(types.RequestTypeListOrSearch)

	var all []*types.DriveFile
	pageToken := ""
	for {
		page, err := c.folders.List(ctx, reqCtx, folderID, utils.DefaultPageSize, pageToken)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Files...)
		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}

func (s *Service) FindChildren(ctx context.Context, account, parentID, name string) ([]*types.DriveFile, error) {
	c, err := s.client(ctx, account)
	if err != nil {
		return nil, err
	}
	return c.files.FindByName(ctx, c.api.RequestContext(types.RequestTypeListOrSearch), parentID, name)
}

func (s *Service) GetMetadata(ctx context.Context, account, id string) (*types.DriveFile, error) {
	c, err := s.client(ctx, account)
	if err != nil {
		return nil, err
	}
	return c.files.Get(ctx, c.api.RequestContext(types.RequestTypeGetByID), id, "")
}

func (s *Service) CreateFolder(ctx context.Context, account, parentID, name string) (*types.DriveFile, error) {
	c, err := s.client(ctx, account)
	if err != nil {
		return nil, err
	}
	return c.folders.Create(ctx, c.api.RequestContext(types.RequestTypeMutation), name, parentID)
}

func (s *Service) UploadContent(ctx context.Context, account, parentID, name string, data []byte, modTime string) (*types.DriveFile, error) {
	c, err := s.client(ctx, account)
	if err != nil {
		return nil, err
	}
	return c.files.Upload(ctx, c.api.RequestContext(types.RequestTypeUpload), data, files.UploadOptions{
		ParentID:     parentID,
		Name:         name,
		ModifiedTime: modTime,
	})
}

func (s *Service) UpdateContent(ctx context.Context, account, fileID string, data []byte, modTime string) (*types.DriveFile, error) {
	c, err := s.client(ctx, account)
	if err != nil {
		return nil, err
	}
	return c.files.UpdateContent(ctx, c.api.RequestContext(types.RequestTypeUpload), fileID, data, files.UpdateContentOptions{
		ModifiedTime: modTime,
	})
}

func (s *Service) DownloadContent(ctx context.Context, account, fileID string) ([]byte, error) {
	c, err := s.client(ctx, account)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.files.Download(ctx, c.api.RequestContext(types.RequestTypeDownload), fileID, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) DeleteItem(ctx context.Context, account, id string) error {
	c, err := s.client(ctx, account)
	if err != nil {
		return err
	}
	err = c.files.Delete(ctx, c.api.RequestContext(types.RequestTypeMutation), id)
	if IsNotFound(err) {
		s.opts.Logger.Debug("delete target already gone", logging.F("account", account), logging.F("id", id))
		return nil
	}
	return err
}
