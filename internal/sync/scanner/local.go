package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/dl-alexandre/gdsync/internal/sync/exclude"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/spf13/afero"
)

// ScanLocal walks root on fsys. A missing root yields an empty listing.
// Symlinks are not followed and unreadable children are skipped.
func ScanLocal(ctx context.Context, fsys afero.Fs, root string, matcher *exclude.Matcher) (Listing, error) {
	entries := make(Listing)

	info, err := fsys.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entries, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return entries, nil
	}

	err = afero.Walk(fsys, root, func(current string, info os.FileInfo, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if walkErr != nil {
			if current == root {
				return walkErr
			}
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, current)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = path.Clean(filepath.ToSlash(rel))

		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if matcher.IsExcluded(rel, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case info.IsDir():
			entries[rel] = Entry{
				RelativePath: rel,
				IsFolder:     true,
				ModifiedTime: types.FormatTimestamp(info.ModTime()),
			}
		case info.Mode().IsRegular():
			entries[rel] = Entry{
				RelativePath: rel,
				Size:         info.Size(),
				ModifiedTime: types.FormatTimestamp(info.ModTime()),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
