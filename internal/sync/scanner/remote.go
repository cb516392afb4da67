package scanner

import (
	"context"
	"path"

	"github.com/dl-alexandre/gdsync/internal/drive"
	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/sync/exclude"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
)

// RemoteScanner lists Drive folder trees breadth first
type RemoteScanner struct {
	store   drive.Store
	matcher *exclude.Matcher
	logger  logging.Logger
}

type remoteNode struct {
	ID   string
	Path string
}

// NewRemoteScanner creates a scanner over store. matcher may be nil.
func NewRemoteScanner(store drive.Store, matcher *exclude.Matcher, logger logging.Logger) *RemoteScanner {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &RemoteScanner{store: store, matcher: matcher, logger: logger}
}

// ListTree lists every descendant of rootID. A subfolder that cannot be
// read is treated as empty. Any failure on the root itself, or any other
// kind of failure below it, aborts the listing.
func (s *RemoteScanner) ListTree(ctx context.Context, account, rootID string) (Listing, error) {
	entries := make(Listing)
	queue := []remoteNode{{ID: rootID, Path: ""}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node := queue[0]
		queue = queue[1:]

		children, err := s.store.ListChildren(ctx, account, node.ID)
		if err != nil {
			if node.Path != "" && drive.IsInaccessible(err) {
				s.logger.Warn("skipping inaccessible folder",
					logging.F("account", account),
					logging.F("path", node.Path),
					logging.F("id", node.ID),
					logging.F("error", err))
				continue
			}
			return nil, err
		}

		for _, child := range children {
			rel := child.Name
			if node.Path != "" {
				rel = path.Join(node.Path, child.Name)
			}
			isFolder := child.MimeType == utils.MimeTypeFolder

			if _, dup := entries[rel]; dup {
				s.logger.Debug("ignoring duplicate name",
					logging.F("path", rel),
					logging.F("id", child.ID))
				continue
			}
			if s.matcher.IsExcluded(rel, isFolder) {
				continue
			}

			entry := Entry{
				RelativePath: rel,
				ModifiedTime: types.NormalizeTimestamp(child.ModifiedTime),
				IsFolder:     isFolder,
				RemoteID:     child.ID,
			}
			if !isFolder {
				entry.Size = child.Size
			}
			entries[rel] = entry

			if isFolder {
				queue = append(queue, remoteNode{ID: child.ID, Path: rel})
			}
		}
	}

	return entries, nil
}
