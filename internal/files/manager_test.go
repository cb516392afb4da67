package files

import (
	"context"
	"testing"

	"github.com/dl-alexandre/gdsync/internal/api"
	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"google.golang.org/api/drive/v3"
)

func TestConvertDriveFile(t *testing.T) {
	in := &drive.File{
		Id:           "file123",
		Name:         "report.pdf",
		MimeType:     "application/pdf",
		Size:         2048,
		Md5Checksum:  "abc",
		CreatedTime:  "2024-01-01T00:00:00.000Z",
		ModifiedTime: "2024-01-02T00:00:00.000Z",
		Parents:      []string{"parent1"},
		ResourceKey:  "key",
	}

	got := convertDriveFile(in)
	if got.ID != "file123" || got.Name != "report.pdf" || got.Size != 2048 {
		t.Errorf("unexpected identity fields: %+v", got)
	}
	if got.ModifiedTime != in.ModifiedTime || got.MD5Checksum != "abc" {
		t.Errorf("unexpected metadata: %+v", got)
	}
	if len(got.Parents) != 1 || got.Parents[0] != "parent1" {
		t.Errorf("Parents = %v", got.Parents)
	}
}

func TestMediaOptions(t *testing.T) {
	if opts := mediaOptions(1024); opts != nil {
		t.Errorf("small upload got %d media options, want none", len(opts))
	}
	if opts := mediaOptions(utils.UploadSimpleMaxBytes + 1); len(opts) != 1 {
		t.Errorf("large upload got %d media options, want a chunk size", len(opts))
	}
}

func TestUpload_RequiresName(t *testing.T) {
	m := NewManager(api.NewClient(nil, "me", 0, 0, logging.NewNoOpLogger()))

	_, err := m.Upload(context.Background(), api.NewRequestContext("me", types.RequestTypeUpload), []byte("x"), UploadOptions{ParentID: "p"})
	if err == nil {
		t.Fatal("expected an error for an unnamed upload")
	}
	if appErr, ok := err.(*utils.AppError); !ok || appErr.CLIError.Code != utils.ErrCodeInvalidArgument {
		t.Errorf("err = %v, want INVALID_ARGUMENT", err)
	}
}
