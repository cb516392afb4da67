// Package resolver maps slash-separated relative paths under a Drive root
// folder to item ids, creating intermediate folders on demand.
package resolver

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync"

	"github.com/dl-alexandre/gdsync/internal/drive"
	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned by ResolveID when a segment is missing or a
// non-terminal segment is not a folder
var ErrNotFound = errors.New("path not found")

// PathResolver resolves relative paths against a root folder. Ensured folder
// ids are cached for the lifetime of the resolver, which is one sync run.
type PathResolver struct {
	store  drive.Store
	logger logging.Logger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[folderKey]string
}

type folderKey struct {
	account, rootID, dir string
}

// NewPathResolver creates a resolver over store
func NewPathResolver(store drive.Store, logger logging.Logger) *PathResolver {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &PathResolver{
		store:  store,
		logger: logger,
		cache:  make(map[folderKey]string),
	}
}

// EnsureFolder returns the id of dir under rootID, creating any missing
// folders along the way. An existing child with the same name is reused
// when it is a folder or a shortcut. "", "." and "/" resolve to rootID.
func (r *PathResolver) EnsureFolder(ctx context.Context, account, rootID, dir string) (string, error) {
	dir = normalizePath(dir)
	if dir == "" {
		return rootID, nil
	}

	key := folderKey{account, rootID, dir}
	if id, ok := r.cached(key); ok {
		return id, nil
	}

	v, err, _ := r.group.Do(account+"\x00"+rootID+"\x00"+dir, func() (interface{}, error) {
		if id, ok := r.cached(key); ok {
			return id, nil
		}

		parentDir, name := path.Split(dir)
		parentID, err := r.EnsureFolder(ctx, account, rootID, parentDir)
		if err != nil {
			return "", err
		}

		matches, err := r.store.FindChildren(ctx, account, parentID, name)
		if err != nil {
			return "", err
		}
		for _, m := range matches {
			if m.MimeType == utils.MimeTypeFolder || m.MimeType == utils.MimeTypeShortcut {
				r.remember(key, m.ID)
				return m.ID, nil
			}
		}

		created, err := r.store.CreateFolder(ctx, account, parentID, name)
		if err != nil {
			return "", err
		}
		r.logger.Debug("created remote folder",
			logging.F("account", account),
			logging.F("path", dir),
			logging.F("id", created.ID))
		r.remember(key, created.ID)
		return created.ID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// ResolveID walks relPath from rootID without creating anything
func (r *PathResolver) ResolveID(ctx context.Context, account, rootID, relPath string) (string, error) {
	relPath = normalizePath(relPath)
	if relPath == "" {
		return "", ErrNotFound
	}

	currentID := rootID
	segments := strings.Split(relPath, "/")

	// Start from the deepest ensured ancestor when one is known
	start := 0
	for i := len(segments) - 1; i > 0; i-- {
		if id, ok := r.cached(folderKey{account, rootID, strings.Join(segments[:i], "/")}); ok {
			currentID, start = id, i
			break
		}
	}

	for i := start; i < len(segments); i++ {
		matches, err := r.store.FindChildren(ctx, account, currentID, segments[i])
		if err != nil {
			if drive.IsNotFound(err) {
				return "", ErrNotFound
			}
			return "", err
		}
		if len(matches) == 0 {
			return "", ErrNotFound
		}

		if i == len(segments)-1 {
			return matches[0].ID, nil
		}

		next := ""
		for _, m := range matches {
			if m.MimeType == utils.MimeTypeFolder {
				next = m.ID
				break
			}
		}
		if next == "" {
			return "", ErrNotFound
		}
		currentID = next
	}
	return currentID, nil
}

// Forget drops cached folder ids for prefix and everything below it.
// An empty prefix clears the whole cache.
func (r *PathResolver) Forget(prefix string) {
	prefix = normalizePath(prefix)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prefix == "" {
		r.cache = make(map[folderKey]string)
		return
	}
	for key := range r.cache {
		if key.dir == prefix || strings.HasPrefix(key.dir, prefix+"/") {
			delete(r.cache, key)
		}
	}
}

func (r *PathResolver) cached(key folderKey) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.cache[key]
	return id, ok
}

func (r *PathResolver) remember(key folderKey, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = id
}

// normalizePath converts separators to "/" and drops empty and "." segments
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}
