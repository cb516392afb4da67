package endpoint

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dl-alexandre/gdsync/internal/sync/exclude"
	"github.com/dl-alexandre/gdsync/internal/sync/scanner"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/spf13/afero"
)

// Local is a directory on an afero filesystem
type Local struct {
	fs      afero.Fs
	root    string
	matcher *exclude.Matcher
}

var _ Endpoint = (*Local)(nil)

// NewLocal creates an endpoint rooted at root
func NewLocal(fsys afero.Fs, root string, matcher *exclude.Matcher) *Local {
	return &Local{fs: fsys, root: root, matcher: matcher}
}

func (l *Local) abs(rel string) string {
	return filepath.Join(l.root, filepath.FromSlash(rel))
}

func (l *Local) List(ctx context.Context) (scanner.Listing, error) {
	return scanner.ScanLocal(ctx, l.fs, l.root, l.matcher)
}

func (l *Local) Read(ctx context.Context, rel string) ([]byte, error) {
	data, err := afero.ReadFile(l.fs, l.abs(rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(rel)
	}
	return data, err
}

func (l *Local) Write(ctx context.Context, rel string, data []byte, modTime string) error {
	dst := l.abs(rel)
	if err := l.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := afero.WriteFile(l.fs, dst, data, 0o644); err != nil {
		return err
	}
	return l.touch(dst, modTime)
}

// CopyFrom streams rel from another local endpoint without buffering it
func (l *Local) CopyFrom(ctx context.Context, src *Local, rel, modTime string) (err error) {
	in, err := src.fs.Open(src.abs(rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound(rel)
		}
		return err
	}
	defer in.Close()

	dst := l.abs(rel)
	if err := l.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := l.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err == nil {
			err = l.touch(dst, modTime)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

func (l *Local) touch(dst, modTime string) error {
	if modTime == "" {
		return nil
	}
	t, err := types.ParseTimestamp(modTime)
	if err != nil {
		return nil
	}
	return l.fs.Chtimes(dst, t, t)
}

func (l *Local) Delete(ctx context.Context, rel string, isFolder bool) error {
	target := l.abs(rel)
	var err error
	if isFolder {
		err = l.fs.RemoveAll(target)
	} else {
		err = l.fs.Remove(target)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) Describe() types.Location {
	return types.LocalLocation(l.root)
}
