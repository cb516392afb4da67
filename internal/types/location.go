package types

import (
	"fmt"
	"strings"
)

// LocationType tags which storage a Location points into
type LocationType string

const (
	LocationLocal LocationType = "local"
	LocationDrive LocationType = "drive"
)

// Location identifies one side of a sync pair: a local directory or a
// Drive folder reached through an account.
type Location struct {
	Type       LocationType `json:"type"`
	Path       string       `json:"path,omitempty"`
	AccountID  string       `json:"accountId,omitempty"`
	FolderID   string       `json:"folderId,omitempty"`
	FolderName string       `json:"folderName,omitempty"`
}

// LocalLocation builds a local Location
func LocalLocation(path string) Location {
	return Location{Type: LocationLocal, Path: path}
}

// DriveLocation builds a Drive Location
func DriveLocation(accountID, folderID, folderName string) Location {
	return Location{Type: LocationDrive, AccountID: accountID, FolderID: folderID, FolderName: folderName}
}

func (l Location) IsLocal() bool { return l.Type == LocationLocal }

func (l Location) IsDrive() bool { return l.Type == LocationDrive }

// Validate checks that the fields required by the location type are present
func (l Location) Validate() error {
	switch l.Type {
	case LocationLocal:
		if l.Path == "" {
			return fmt.Errorf("local location requires a path")
		}
	case LocationDrive:
		if l.AccountID == "" {
			return fmt.Errorf("drive location requires an accountId")
		}
		if l.FolderID == "" {
			return fmt.Errorf("drive location requires a folderId")
		}
	default:
		return fmt.Errorf("unknown location type: %q", l.Type)
	}
	return nil
}

func (l Location) String() string {
	switch l.Type {
	case LocationLocal:
		return "local:" + l.Path
	case LocationDrive:
		name := l.FolderName
		if name == "" {
			name = l.FolderID
		}
		return fmt.Sprintf("drive:%s/%s", l.AccountID, name)
	default:
		return string(l.Type)
	}
}

// ParseLocation reads the command-line form of a location:
// "drive:<account>/<folderId>", "local:<path>" or a bare local path.
func ParseLocation(s string) (Location, error) {
	switch {
	case strings.HasPrefix(s, "drive:"):
		account, folderID, ok := strings.Cut(strings.TrimPrefix(s, "drive:"), "/")
		if !ok {
			return Location{}, fmt.Errorf("drive location must look like drive:<account>/<folderId>, got %q", s)
		}
		loc := DriveLocation(account, folderID, "")
		return loc, loc.Validate()
	case strings.HasPrefix(s, "local:"):
		loc := LocalLocation(strings.TrimPrefix(s, "local:"))
		return loc, loc.Validate()
	}
	loc := LocalLocation(s)
	return loc, loc.Validate()
}
