package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dl-alexandre/gdsync/internal/drive"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
)

// RootID is the id of the folder every MemoryDrive starts with
const RootID = "root"

type memItem struct {
	file types.DriveFile
	data []byte
}

// MemoryDrive is an in-memory drive.Store. It keeps one tree shared by
// every account and counts calls per operation.
type MemoryDrive struct {
	mu     sync.Mutex
	items  map[string]*memItem
	nextID int
	calls  map[string]int
	errs   map[string]error
	now    func() time.Time
}

var _ drive.Store = (*MemoryDrive)(nil)

// NewMemoryDrive creates a store holding only the root folder
func NewMemoryDrive() *MemoryDrive {
	m := &MemoryDrive{
		items: make(map[string]*memItem),
		calls: make(map[string]int),
		errs:  make(map[string]error),
		now:   time.Now,
	}
	m.items[RootID] = &memItem{file: types.DriveFile{ID: RootID, Name: "My Drive", MimeType: utils.MimeTypeFolder}}
	return m
}

// NotFound builds the error the Drive-backed store returns for a missing id
func NotFound(id string) error {
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodeFileNotFound, "File not found: "+id).
		WithHTTPStatus(404).
		Build())
}

// PermissionDenied builds a 403 error for id
func PermissionDenied(id string) error {
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodePermissionDenied, "Permission denied: "+id).
		WithHTTPStatus(403).
		Build())
}

// FailOn makes op (a Store method name) fail with err whenever it targets id.
// An empty id matches every call of op.
func (m *MemoryDrive) FailOn(op, id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[op+"|"+id] = err
}

// CallCount reports how many times op was invoked
func (m *MemoryDrive) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// ResetCalls zeroes all call counters
func (m *MemoryDrive) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
}

// AddFolder inserts a folder under parentID and returns its id
func (m *MemoryDrive) AddFolder(parentID, name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(parentID, name, utils.MimeTypeFolder, nil, "")
}

// AddShortcut inserts a folder shortcut under parentID and returns its id
func (m *MemoryDrive) AddShortcut(parentID, name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(parentID, name, utils.MimeTypeShortcut, nil, "")
}

// AddFile inserts a file under parentID and returns its id
func (m *MemoryDrive) AddFile(parentID, name, content, modified string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(parentID, name, "application/octet-stream", []byte(content), modified)
}

// Lookup walks slash-separated names from RootID. It returns nil when any
// segment is missing.
func (m *MemoryDrive) Lookup(path string) *types.DriveFile {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := RootID
	for _, name := range strings.Split(strings.Trim(path, "/"), "/") {
		if name == "" {
			continue
		}
		found := ""
		for _, child := range m.childrenLocked(current) {
			if child.file.Name == name {
				found = child.file.ID
				break
			}
		}
		if found == "" {
			return nil
		}
		current = found
	}
	f := m.items[current].file
	return &f
}

// Content returns the stored bytes of id
func (m *MemoryDrive) Content(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[id]; ok {
		return string(it.data)
	}
	return ""
}

// Count returns the number of items, the root included
func (m *MemoryDrive) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *MemoryDrive) insert(parentID, name, mimeType string, data []byte, modified string) string {
	m.nextID++
	id := fmt.Sprintf("id-%d", m.nextID)
	if modified == "" {
		modified = types.FormatTimestamp(m.now())
	}
	m.items[id] = &memItem{
		file: types.DriveFile{
			ID:           id,
			Name:         name,
			MimeType:     mimeType,
			Size:         int64(len(data)),
			ModifiedTime: modified,
			Parents:      []string{parentID},
		},
		data: data,
	}
	return id
}

func (m *MemoryDrive) childrenLocked(parentID string) []*memItem {
	var out []*memItem
	for _, it := range m.items {
		if len(it.file.Parents) > 0 && it.file.Parents[0] == parentID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].file.Name != out[j].file.Name {
			return out[i].file.Name < out[j].file.Name
		}
		return out[i].file.ID < out[j].file.ID
	})
	return out
}

// enter records the call and returns any injected failure
func (m *MemoryDrive) enter(op, id string) error {
	m.calls[op]++
	if err, ok := m.errs[op+"|"+id]; ok {
		return err
	}
	return m.errs[op+"|"]
}

func (m *MemoryDrive) ListChildren(ctx context.Context, account, folderID string) ([]*types.DriveFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListChildren", folderID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := m.items[folderID]; !ok {
		return nil, NotFound(folderID)
	}
	var out []*types.DriveFile
	for _, it := range m.childrenLocked(folderID) {
		f := it.file
		out = append(out, &f)
	}
	return out, nil
}

func (m *MemoryDrive) FindChildren(ctx context.Context, account, parentID, name string) ([]*types.DriveFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("FindChildren", parentID); err != nil {
		return nil, err
	}
	var out []*types.DriveFile
	for _, it := range m.childrenLocked(parentID) {
		if it.file.Name == name {
			f := it.file
			out = append(out, &f)
		}
	}
	return out, nil
}

func (m *MemoryDrive) GetMetadata(ctx context.Context, account, id string) (*types.DriveFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetMetadata", id); err != nil {
		return nil, err
	}
	it, ok := m.items[id]
	if !ok {
		return nil, NotFound(id)
	}
	f := it.file
	return &f, nil
}

func (m *MemoryDrive) CreateFolder(ctx context.Context, account, parentID, name string) (*types.DriveFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateFolder", parentID); err != nil {
		return nil, err
	}
	if _, ok := m.items[parentID]; !ok {
		return nil, NotFound(parentID)
	}
	id := m.insert(parentID, name, utils.MimeTypeFolder, nil, "")
	f := m.items[id].file
	return &f, nil
}

func (m *MemoryDrive) UploadContent(ctx context.Context, account, parentID, name string, data []byte, modTime string) (*types.DriveFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UploadContent", parentID); err != nil {
		return nil, err
	}
	if _, ok := m.items[parentID]; !ok {
		return nil, NotFound(parentID)
	}
	id := m.insert(parentID, name, "application/octet-stream", append([]byte(nil), data...), modTime)
	f := m.items[id].file
	return &f, nil
}

func (m *MemoryDrive) UpdateContent(ctx context.Context, account, fileID string, data []byte, modTime string) (*types.DriveFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateContent", fileID); err != nil {
		return nil, err
	}
	it, ok := m.items[fileID]
	if !ok {
		return nil, NotFound(fileID)
	}
	it.data = append([]byte(nil), data...)
	it.file.Size = int64(len(data))
	if modTime == "" {
		modTime = types.FormatTimestamp(m.now())
	}
	it.file.ModifiedTime = modTime
	f := it.file
	return &f, nil
}

func (m *MemoryDrive) DownloadContent(ctx context.Context, account, fileID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DownloadContent", fileID); err != nil {
		return nil, err
	}
	it, ok := m.items[fileID]
	if !ok {
		return nil, NotFound(fileID)
	}
	return append([]byte(nil), it.data...), nil
}

func (m *MemoryDrive) DeleteItem(ctx context.Context, account, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteItem", id); err != nil {
		return err
	}
	if _, ok := m.items[id]; !ok {
		return nil
	}
	m.deleteLocked(id)
	return nil
}

func (m *MemoryDrive) deleteLocked(id string) {
	for _, child := range m.childrenLocked(id) {
		m.deleteLocked(child.file.ID)
	}
	delete(m.items, id)
}
