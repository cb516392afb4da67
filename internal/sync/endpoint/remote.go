package endpoint

import (
	"context"
	"errors"
	"path"

	"github.com/dl-alexandre/gdsync/internal/drive"
	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/resolver"
	"github.com/dl-alexandre/gdsync/internal/sync/exclude"
	"github.com/dl-alexandre/gdsync/internal/sync/scanner"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
)

// Remote is a Drive folder reached through an account
type Remote struct {
	store    drive.Store
	loc      types.Location
	resolver *resolver.PathResolver
	scanner  *scanner.RemoteScanner
	logger   logging.Logger
}

var _ Endpoint = (*Remote)(nil)

// NewRemote creates an endpoint for a drive Location
func NewRemote(store drive.Store, loc types.Location, matcher *exclude.Matcher, logger logging.Logger) *Remote {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Remote{
		store:    store,
		loc:      loc,
		resolver: resolver.NewPathResolver(store, logger),
		scanner:  scanner.NewRemoteScanner(store, matcher, logger),
		logger:   logger,
	}
}

func (r *Remote) List(ctx context.Context) (scanner.Listing, error) {
	return r.scanner.ListTree(ctx, r.loc.AccountID, r.loc.FolderID)
}

func (r *Remote) lookup(ctx context.Context, rel string) (string, error) {
	id, err := r.resolver.ResolveID(ctx, r.loc.AccountID, r.loc.FolderID, rel)
	if errors.Is(err, resolver.ErrNotFound) {
		return "", notFound(rel)
	}
	return id, err
}

func (r *Remote) Read(ctx context.Context, rel string) ([]byte, error) {
	id, err := r.lookup(ctx, rel)
	if err != nil {
		return nil, err
	}
	return r.store.DownloadContent(ctx, r.loc.AccountID, id)
}

// Write uploads data to rel. An existing file with the same name in the
// destination folder gets its content replaced.
func (r *Remote) Write(ctx context.Context, rel string, data []byte, modTime string) error {
	account := r.loc.AccountID
	dir, name := path.Split(rel)

	parentID, err := r.resolver.EnsureFolder(ctx, account, r.loc.FolderID, dir)
	if err != nil {
		return err
	}

	existing, err := r.store.FindChildren(ctx, account, parentID, name)
	if err != nil {
		return err
	}
	for _, f := range existing {
		if f.MimeType != utils.MimeTypeFolder {
			_, err = r.store.UpdateContent(ctx, account, f.ID, data, modTime)
			return err
		}
	}

	_, err = r.store.UploadContent(ctx, account, parentID, name, data, modTime)
	return err
}

func (r *Remote) Delete(ctx context.Context, rel string, isFolder bool) error {
	id, err := r.lookup(ctx, rel)
	if err != nil {
		if drive.IsNotFound(err) {
			r.logger.Debug("delete target already gone", logging.F("path", rel))
			return nil
		}
		return err
	}
	if err := r.store.DeleteItem(ctx, r.loc.AccountID, id); err != nil {
		return err
	}
	if isFolder {
		r.resolver.Forget(rel)
	}
	return nil
}

func (r *Remote) Describe() types.Location {
	return r.loc
}
