package exclude

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides whether a relative path is left out of a listing.
// A nil Matcher excludes nothing.
type Matcher struct {
	patterns []string
}

// DefaultPatterns is the exclude list `profile init --default-excludes`
// writes into new profiles
func DefaultPatterns() []string {
	return []string{
		".git/",
		".DS_Store",
		"._*",
		"Thumbs.db",
		"desktop.ini",
		"node_modules/",
		"*.tmp",
		"~$*",
	}
}

// New compiles patterns. Blank entries are ignored. It returns nil when no
// pattern remains.
//
//   - "dir/" matches a folder named dir at any depth and everything below it
//   - a pattern without "/" matches the base name of any entry
//   - any other pattern is a doublestar glob over the whole relative path
func New(patterns []string) *Matcher {
	var kept []string
	for _, p := range patterns {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
		p = strings.TrimPrefix(p, "./")
		if p == "" {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return nil
	}
	return &Matcher{patterns: kept}
}

// Validate reports the first pattern doublestar cannot parse
func Validate(patterns []string) error {
	for _, p := range patterns {
		p = strings.TrimSuffix(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return &InvalidPatternError{Pattern: p}
		}
	}
	return nil
}

// InvalidPatternError names a malformed exclude pattern
type InvalidPatternError struct {
	Pattern string
}

func (e *InvalidPatternError) Error() string {
	return "invalid exclude pattern: " + e.Pattern
}

// Patterns returns the compiled pattern list
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// IsExcluded reports whether relPath (slash separated, relative to the
// listing root) is excluded. Callers skip the subtree of an excluded folder.
func (m *Matcher) IsExcluded(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	relPath = strings.TrimPrefix(relPath, "./")
	base := path.Base(relPath)

	for _, p := range m.patterns {
		if dirPattern, ok := strings.CutSuffix(p, "/"); ok {
			if !isDir {
				continue
			}
			if matchPath(dirPattern, relPath) || (!strings.Contains(dirPattern, "/") && matchPath(dirPattern, base)) {
				return true
			}
			continue
		}
		if !strings.Contains(p, "/") {
			if matchPath(p, base) {
				return true
			}
			continue
		}
		if matchPath(p, relPath) {
			return true
		}
	}
	return false
}

func matchPath(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
