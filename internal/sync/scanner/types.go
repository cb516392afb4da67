// Package scanner builds flat listings of local and Drive folder trees.
package scanner

import "sort"

// Entry describes one file or folder of a tree
type Entry struct {
	// RelativePath is slash separated and relative to the listing root
	RelativePath string `json:"path"`
	// Size is 0 for folders
	Size int64 `json:"size"`
	// ModifiedTime uses types.TimestampLayout, or is empty when unknown
	ModifiedTime string `json:"modifiedTime,omitempty"`
	IsFolder     bool   `json:"isFolder,omitempty"`
	// RemoteID is set for Drive entries only
	RemoteID string `json:"remoteId,omitempty"`
}

// Listing maps RelativePath to Entry
type Listing map[string]Entry

// Paths returns the listing's paths in lexical order
func (l Listing) Paths() []string {
	paths := make([]string, 0, len(l))
	for p := range l {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Stats counts files, folders and total file bytes
func (l Listing) Stats() (files, folders int, bytes int64) {
	for _, e := range l {
		if e.IsFolder {
			folders++
			continue
		}
		files++
		bytes += e.Size
	}
	return files, folders, bytes
}
