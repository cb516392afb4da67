package utils

import "strings"

// OAuth scopes
const (
	ScopeFull     = "https://www.googleapis.com/auth/drive"
	ScopeFile     = "https://www.googleapis.com/auth/drive.file"
	ScopeReadonly = "https://www.googleapis.com/auth/drive.readonly"
)

// Retry configuration
const (
	DefaultMaxRetries   = 3
	DefaultRetryDelayMs = 1000
	MaxRetryDelayMs     = 32000
)

// Drive listing page size
const DefaultPageSize = 1000

// Schema version
const SchemaVersion = "1.0"

// Pause poll interval used when no resume signal arrives
const DefaultPausePollMs = 200

// Google Drive MIME types
const (
	MimeTypeFolder   = "application/vnd.google-apps.folder"
	MimeTypeShortcut = "application/vnd.google-apps.shortcut"
)

// IsFolderMimeType reports whether mimeType marks a Drive folder
func IsFolderMimeType(mimeType string) bool {
	return mimeType == MimeTypeFolder
}

// Upload sizing: content above UploadSimpleMaxBytes goes through a chunked
// resumable session.
const (
	UploadSimpleMaxBytes = 5 * 1024 * 1024
	UploadChunkSize      = 8 * 1024 * 1024
)

// DriveFileFields is the field mask used for every file the sync engine reads
const DriveFileFields = "id,name,mimeType,size,md5Checksum,createdTime,modifiedTime,parents,resourceKey,trashed"

// EscapeQueryValue escapes a value for use inside a single-quoted Drive query
// string.
func EscapeQueryValue(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
