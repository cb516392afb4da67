package profile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/goccy/go-json"
	"github.com/spf13/afero"
)

// Extension is the suffix of every profile document
const Extension = ".gdsync.json"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// FileName maps a profile name to its document name
func FileName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_") + Extension
}

// Store reads and writes profiles in one directory
type Store struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

// NewStore creates a store backed by the OS filesystem
func NewStore(dir string) *Store {
	return NewStoreFs(afero.NewOsFs(), dir)
}

// NewStoreFs creates a store on fsys
func NewStoreFs(fsys afero.Fs, dir string) *Store {
	return &Store{fs: fsys, dir: dir, now: time.Now}
}

// Dir returns the profiles directory
func (s *Store) Dir() string {
	return s.dir
}

// Path returns where the profile called name is stored
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, FileName(name))
}

// Save validates p, stamps it and writes it to the store directory
func (s *Store) Save(p *Profile) (string, error) {
	return s.SaveAs(p, s.Path(p.Name))
}

// SaveAs writes p to an explicit file path. The profile takes its name
// from the file name.
func (s *Store) SaveAs(p *Profile, path string) (string, error) {
	if base := filepath.Base(path); strings.HasSuffix(base, Extension) && s.Path(p.Name) != path {
		p.Name = strings.TrimSuffix(base, Extension)
	}
	if err := p.Validate(); err != nil {
		return "", utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).Build())
	}

	p.UpdatedAt = types.FormatTimestamp(s.now())
	if p.CreatedAt == "" {
		p.CreatedAt = p.UpdatedAt
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a profile by name, or by path when ref names a file
func (s *Store) Load(ref string) (*Profile, error) {
	path := ref
	if !strings.HasSuffix(ref, Extension) && !strings.ContainsRune(ref, os.PathSeparator) {
		path = s.Path(ref)
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeProfileNotFound,
				"Profile not found: "+ref).
				WithContext("path", path).
				Build())
		}
		return nil, err
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"Invalid profile "+path+": "+err.Error()).Build())
	}
	if err := p.Validate(); err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"Invalid profile "+path+": "+err.Error()).Build())
	}
	return &p, nil
}

// List returns the paths of every profile in the directory, sorted. A
// missing directory has no profiles.
func (s *Store) List() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	paths := []string{}
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), Extension) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, info.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Delete removes the profile called name
func (s *Store) Delete(name string) error {
	err := s.fs.Remove(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeProfileNotFound, "Profile not found: "+name).Build())
	}
	return err
}
