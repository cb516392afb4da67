// Package endpoint gives the executor one interface over both kinds of
// sync location.
package endpoint

import (
	"context"
	"fmt"

	"github.com/dl-alexandre/gdsync/internal/drive"
	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/sync/exclude"
	"github.com/dl-alexandre/gdsync/internal/sync/scanner"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/spf13/afero"
)

// Endpoint is one side of a sync pair. Paths are slash separated and
// relative to the endpoint root.
type Endpoint interface {
	List(ctx context.Context) (scanner.Listing, error)
	Read(ctx context.Context, rel string) ([]byte, error)
	// Write creates or replaces rel, creating parent folders. A non-empty
	// modTime becomes the destination's modification time.
	Write(ctx context.Context, rel string, data []byte, modTime string) error
	// Delete removes rel. Deleting something that is already gone succeeds.
	Delete(ctx context.Context, rel string, isFolder bool) error
	Describe() types.Location
}

// Deps carries what Open needs to build either endpoint kind
type Deps struct {
	FS      afero.Fs
	Store   drive.Store
	Matcher *exclude.Matcher
	Logger  logging.Logger
}

// Open returns the endpoint implementation for loc
func Open(loc types.Location, deps Deps) (Endpoint, error) {
	if err := loc.Validate(); err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).Build())
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNoOpLogger()
	}

	switch {
	case loc.IsLocal():
		fs := deps.FS
		if fs == nil {
			fs = afero.NewOsFs()
		}
		return NewLocal(fs, loc.Path, deps.Matcher), nil
	case loc.IsDrive():
		if deps.Store == nil {
			return nil, fmt.Errorf("drive location %s requires a drive store", loc)
		}
		return NewRemote(deps.Store, loc, deps.Matcher, deps.Logger), nil
	}
	return nil, fmt.Errorf("unsupported location type %q", loc.Type)
}

func notFound(rel string) error {
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodeFileNotFound, "File not found: "+rel).
		WithContext("path", rel).
		Build())
}
