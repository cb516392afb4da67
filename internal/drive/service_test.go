package drive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dl-alexandre/gdsync/internal/utils"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// fakeDriveAPI serves the handful of Drive v3 endpoints the Service calls
type fakeDriveAPI struct {
	mu       sync.Mutex
	queries  []string
	deleted  []string
	created  []drive.File
	notFound map[string]bool
}

func (f *fakeDriveAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/files"):
		q := r.URL.Query().Get("q")
		f.queries = append(f.queries, q)
		if r.URL.Query().Get("pageToken") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"nextPageToken": "page2",
				"files": []map[string]any{
					{"id": "f1", "name": "a.txt", "mimeType": "text/plain", "size": "3", "modifiedTime": "2024-01-01T00:00:00.000Z"},
				},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]any{
				{"id": "d1", "name": "sub", "mimeType": utils.MimeTypeFolder},
			},
		})
	case r.Method == http.MethodDelete:
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		if f.notFound[id] {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"File not found: ` + id + `"}}`))
			return
		}
		f.deleted = append(f.deleted, id)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/files"):
		var file drive.File
		_ = json.NewDecoder(r.Body).Decode(&file)
		file.Id = "new-folder"
		f.created = append(f.created, file)
		_ = json.NewEncoder(w).Encode(file)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

type staticProvider struct {
	svc   *drive.Service
	calls int
}

func (p *staticProvider) DriveService(ctx context.Context, account string) (*drive.Service, error) {
	p.calls++
	return p.svc, nil
}

func newTestService(t *testing.T, api *fakeDriveAPI) (*Service, *staticProvider) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	provider := &staticProvider{svc: svc}
	return NewService(provider, Options{MaxRetries: 0, RetryDelayMs: 1}), provider
}

func TestService_ListChildrenFollowsPages(t *testing.T) {
	api := &fakeDriveAPI{}
	svc, provider := newTestService(t, api)

	children, err := svc.ListChildren(context.Background(), "me", "root-id")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "a.txt", children[0].Name)
	assert.Equal(t, int64(3), children[0].Size)
	assert.Equal(t, utils.MimeTypeFolder, children[1].MimeType)

	require.Len(t, api.queries, 2)
	assert.Equal(t, "'root-id' in parents and trashed = false", api.queries[0])

	_, err = svc.ListChildren(context.Background(), "me", "root-id")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls, "account client should be built once")
}

func TestService_FindChildrenEscapesName(t *testing.T) {
	api := &fakeDriveAPI{}
	svc, _ := newTestService(t, api)

	_, err := svc.FindChildren(context.Background(), "me", "p", `it's\here`)
	require.NoError(t, err)
	require.NotEmpty(t, api.queries)
	assert.Equal(t, `'p' in parents and trashed = false and name = 'it\'s\\here'`, api.queries[0])
}

func TestService_DeleteItem(t *testing.T) {
	api := &fakeDriveAPI{notFound: map[string]bool{"gone": true}}
	svc, _ := newTestService(t, api)

	require.NoError(t, svc.DeleteItem(context.Background(), "me", "present"))
	require.NoError(t, svc.DeleteItem(context.Background(), "me", "gone"), "missing item should be a no-op")
	assert.Equal(t, []string{"present"}, api.deleted)
}

func TestService_CreateFolder(t *testing.T) {
	api := &fakeDriveAPI{}
	svc, _ := newTestService(t, api)

	folder, err := svc.CreateFolder(context.Background(), "me", "parent", "Photos")
	require.NoError(t, err)
	assert.Equal(t, "new-folder", folder.ID)

	require.Len(t, api.created, 1)
	assert.Equal(t, "Photos", api.created[0].Name)
	assert.Equal(t, utils.MimeTypeFolder, api.created[0].MimeType)
	assert.Equal(t, []string{"parent"}, api.created[0].Parents)
}
