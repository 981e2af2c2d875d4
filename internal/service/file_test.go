package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabinetd/cabinet/internal/model"
	"github.com/cabinetd/cabinet/internal/queue"
	"github.com/cabinetd/cabinet/internal/repository"
	"github.com/cabinetd/cabinet/internal/storage"
)

// fakeFiles is an in-memory catalog keeping insertion order.
type fakeFiles struct {
	records []*model.File

	insertErr error
}

var _ repository.FileRepository = (*fakeFiles)(nil)

func (f *fakeFiles) Insert(file *model.File) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	file.Position = int64(len(f.records) + 1)
	cpy := *file
	f.records = append(f.records, &cpy)
	return nil
}

func (f *fakeFiles) ByID(id string) (*model.File, error) {
	for _, r := range f.records {
		if r.ID == id {
			c := *r
			return &c, nil
		}
	}
	return nil, repository.ErrFileNotFound
}

func (f *fakeFiles) ByIDAndUser(id, userID string) (*model.File, error) {
	for _, r := range f.records {
		if r.ID == id && r.UserID == userID {
			c := *r
			return &c, nil
		}
	}
	return nil, repository.ErrFileNotFound
}

func (f *fakeFiles) ByParent(parentID string, offset, limit int) ([]*model.File, error) {
	matched := []*model.File{}
	for _, r := range f.records {
		if r.ParentID == parentID {
			c := *r
			matched = append(matched, &c)
		}
	}
	if offset >= len(matched) {
		return []*model.File{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (f *fakeFiles) SetPublic(id string, public bool) (*model.File, error) {
	for _, r := range f.records {
		if r.ID == id {
			r.IsPublic = public
			c := *r
			return &c, nil
		}
	}
	return nil, repository.ErrFileNotFound
}

func (f *fakeFiles) Count() (int64, error) {
	return int64(len(f.records)), nil
}

// fakeStorage keeps blobs in a map and counts placements.
type fakeStorage struct {
	blobs    map[string][]byte
	placed   int
	placeErr error
}

var _ storage.Storage = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: map[string][]byte{}}
}

func (s *fakeStorage) Place(_ context.Context, data []byte) (string, error) {
	if s.placeErr != nil {
		return "", s.placeErr
	}
	s.placed++
	location := fmt.Sprintf("/blobs/%s", uuid.New().String())
	s.blobs[location] = append([]byte(nil), data...)
	return location, nil
}

func (s *fakeStorage) Read(_ context.Context, location string) ([]byte, error) {
	data, ok := s.blobs[location]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (s *fakeStorage) Delete(_ context.Context, location string) error {
	delete(s.blobs, location)
	return nil
}

func (s *fakeStorage) Ping(context.Context) error { return nil }

// fakeDispatcher records enqueued jobs.
type fakeDispatcher struct {
	jobs       []model.ThumbnailJob
	enqueueErr error
}

var _ queue.Dispatcher = (*fakeDispatcher)(nil)

func (d *fakeDispatcher) Enqueue(job model.ThumbnailJob) error {
	if d.enqueueErr != nil {
		return d.enqueueErr
	}
	d.jobs = append(d.jobs, job)
	return nil
}

func (d *fakeDispatcher) Close() {}

func newFileService() (*FileService, *fakeFiles, *fakeStorage, *fakeDispatcher) {
	files := &fakeFiles{}
	store := newFakeStorage()
	dispatcher := &fakeDispatcher{}
	return NewFileService(files, store, dispatcher), files, store, dispatcher
}

func testUser() *model.User {
	return &model.User{ID: uuid.New().String(), Email: "alice@example.com"}
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestFileService_CreateFolder(t *testing.T) {
	t.Parallel()
	svc, files, store, _ := newFileService()
	user := testUser()

	out, err := svc.Create(context.Background(), user, CreateFileParams{
		Name: "documents",
		Type: model.FileTypeFolder,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, user.ID, out.UserID)
	assert.Equal(t, model.FileTypeFolder, out.Type)
	assert.Equal(t, model.RootFolderID, out.ParentID)
	assert.False(t, out.IsPublic)

	// Folders carry no content
	rec, err := files.ByID(out.ID)
	require.NoError(t, err)
	assert.Empty(t, rec.LocalPath)
	assert.Equal(t, 0, store.placed)
}

func TestFileService_CreateValidationOrder(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newFileService()
	user := testUser()

	tests := []struct {
		name    string
		params  CreateFileParams
		wantErr error
	}{
		{
			name:    "missing name wins over everything",
			params:  CreateFileParams{Type: "bogus", ParentID: "also-bogus"},
			wantErr: ErrMissingName,
		},
		{
			name:    "missing type",
			params:  CreateFileParams{Name: "a"},
			wantErr: ErrMissingType,
		},
		{
			name:    "invalid type is missing type",
			params:  CreateFileParams{Name: "a", Type: "archive"},
			wantErr: ErrMissingType,
		},
		{
			name:    "missing data for file",
			params:  CreateFileParams{Name: "a", Type: model.FileTypeFile},
			wantErr: ErrMissingData,
		},
		{
			name:    "missing data for image",
			params:  CreateFileParams{Name: "a", Type: model.FileTypeImage},
			wantErr: ErrMissingData,
		},
		{
			name:    "missing data checked before parent",
			params:  CreateFileParams{Name: "a", Type: model.FileTypeFile, ParentID: "not-a-uuid"},
			wantErr: ErrMissingData,
		},
		{
			name:    "malformed parent id",
			params:  CreateFileParams{Name: "a", Type: model.FileTypeFolder, ParentID: "not-a-uuid"},
			wantErr: ErrParentNotFound,
		},
		{
			name:    "nonexistent parent",
			params:  CreateFileParams{Name: "a", Type: model.FileTypeFolder, ParentID: uuid.New().String()},
			wantErr: ErrParentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), user, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFileService_CreateFileRoundTrip(t *testing.T) {
	t.Parallel()
	svc, files, store, _ := newFileService()
	user := testUser()

	folder, err := svc.Create(context.Background(), user, CreateFileParams{
		Name: "docs",
		Type: model.FileTypeFolder,
	})
	require.NoError(t, err)

	out, err := svc.Create(context.Background(), user, CreateFileParams{
		Name:     "notes.txt",
		Type:     model.FileTypeFile,
		ParentID: folder.ID,
		Data:     b64("Hello Cabinet"),
	})
	require.NoError(t, err)
	assert.Equal(t, folder.ID, out.ParentID)

	// getFile sees the parent link
	got, err := svc.ByID(user, out.ID)
	require.NoError(t, err)
	assert.Equal(t, folder.ID, got.ParentID)

	// content bytes were written verbatim
	rec, err := files.ByID(out.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello Cabinet"), store.blobs[rec.LocalPath])

	// a file is not a valid parent
	_, err = svc.Create(context.Background(), user, CreateFileParams{
		Name:     "nested.txt",
		Type:     model.FileTypeFile,
		ParentID: out.ID,
		Data:     b64("x"),
	})
	assert.ErrorIs(t, err, ErrParentNotFolder)
}

func TestFileService_CreateDistinctLocations(t *testing.T) {
	t.Parallel()
	svc, files, _, _ := newFileService()
	user := testUser()

	locations := map[string]bool{}
	for i := 0; i < 5; i++ {
		out, err := svc.Create(context.Background(), user, CreateFileParams{
			Name: "same.txt",
			Type: model.FileTypeFile,
			Data: b64("identical content"),
		})
		require.NoError(t, err)

		rec, err := files.ByID(out.ID)
		require.NoError(t, err)
		assert.False(t, locations[rec.LocalPath])
		locations[rec.LocalPath] = true
	}
}

func TestFileService_CreatePlacementFailure(t *testing.T) {
	t.Parallel()
	svc, files, store, _ := newFileService()
	user := testUser()

	store.placeErr = errors.New("disk full")

	_, err := svc.Create(context.Background(), user, CreateFileParams{
		Name: "big.bin",
		Type: model.FileTypeFile,
		Data: b64("data"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	// no catalog insert happened
	n, _ := files.Count()
	assert.Zero(t, n)
}

func TestFileService_CreateImageEnqueuesThumbnailJob(t *testing.T) {
	t.Parallel()
	svc, _, _, dispatcher := newFileService()
	user := testUser()

	out, err := svc.Create(context.Background(), user, CreateFileParams{
		Name: "cat.png",
		Type: model.FileTypeImage,
		Data: b64("png bytes"),
	})
	require.NoError(t, err)

	require.Len(t, dispatcher.jobs, 1)
	assert.Equal(t, out.ID, dispatcher.jobs[0].FileID)
	assert.Equal(t, user.ID, dispatcher.jobs[0].UserID)
}

func TestFileService_CreateFileDoesNotEnqueue(t *testing.T) {
	t.Parallel()
	svc, _, _, dispatcher := newFileService()

	_, err := svc.Create(context.Background(), testUser(), CreateFileParams{
		Name: "notes.txt",
		Type: model.FileTypeFile,
		Data: b64("text"),
	})
	require.NoError(t, err)
	assert.Empty(t, dispatcher.jobs)
}

func TestFileService_CreateEnqueueFailureIsBestEffort(t *testing.T) {
	t.Parallel()
	svc, _, _, dispatcher := newFileService()
	dispatcher.enqueueErr = queue.ErrQueueFull

	out, err := svc.Create(context.Background(), testUser(), CreateFileParams{
		Name: "cat.png",
		Type: model.FileTypeImage,
		Data: b64("png bytes"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
}

func TestFileService_ByIDOwnership(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newFileService()
	owner := testUser()
	other := testUser()

	out, err := svc.Create(context.Background(), owner, CreateFileParams{
		Name: "secret",
		Type: model.FileTypeFolder,
	})
	require.NoError(t, err)

	// malformed id, nonexistence and ownership mismatch all look the same
	_, err = svc.ByID(owner, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ByID(owner, uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ByID(other, out.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.ByID(owner, out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.ID, got.ID)
}

func TestFileService_ListPagination(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newFileService()
	user := testUser()

	folder, err := svc.Create(context.Background(), user, CreateFileParams{
		Name: "bulk",
		Type: model.FileTypeFolder,
	})
	require.NoError(t, err)

	for i := 0; i < 45; i++ {
		_, err := svc.Create(context.Background(), user, CreateFileParams{
			Name:     fmt.Sprintf("file-%02d", i),
			Type:     model.FileTypeFile,
			ParentID: folder.ID,
			Data:     b64("x"),
		})
		require.NoError(t, err)
	}

	page0, err := svc.List(user, folder.ID, 0)
	require.NoError(t, err)
	page1, err := svc.List(user, folder.ID, 1)
	require.NoError(t, err)
	page2, err := svc.List(user, folder.ID, 2)
	require.NoError(t, err)
	page3, err := svc.List(user, folder.ID, 3)
	require.NoError(t, err)

	assert.Len(t, page0, PageSize)
	assert.Len(t, page1, PageSize)
	assert.Len(t, page2, 5)
	assert.Empty(t, page3)

	// insertion order, no overlap across pages
	assert.Equal(t, "file-00", page0[0].Name)
	assert.Equal(t, "file-20", page1[0].Name)
	seen := map[string]bool{}
	for _, f := range append(append(page0, page1...), page2...) {
		assert.False(t, seen[f.ID])
		seen[f.ID] = true
	}
}

func TestFileService_ListPermissiveParent(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newFileService()
	user := testUser()

	// nonexistent parent: empty list, not an error
	out, err := svc.List(user, uuid.New().String(), 0)
	require.NoError(t, err)
	assert.Empty(t, out)

	// syntactically invalid parent behaves the same
	out, err = svc.List(user, "not-a-uuid", 0)
	require.NoError(t, err)
	assert.Empty(t, out)

	// a non-folder parent has no children either
	file, err := svc.Create(context.Background(), user, CreateFileParams{
		Name: "plain.txt",
		Type: model.FileTypeFile,
		Data: b64("x"),
	})
	require.NoError(t, err)

	out, err = svc.List(user, file.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFileService_ListIsNotScopedToCaller(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newFileService()
	alice := testUser()
	bob := testUser()

	folder, err := svc.Create(context.Background(), alice, CreateFileParams{
		Name: "shared",
		Type: model.FileTypeFolder,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), alice, CreateFileParams{
		Name: "from-alice", Type: model.FileTypeFile, ParentID: folder.ID, Data: b64("a"),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), bob, CreateFileParams{
		Name: "from-bob", Type: model.FileTypeFile, ParentID: folder.ID, Data: b64("b"),
	})
	require.NoError(t, err)

	// the listing pipeline matches by parent only
	out, err := svc.List(alice, folder.ID, 0)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestFileService_SetVisibility(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newFileService()
	owner := testUser()
	other := testUser()

	out, err := svc.Create(context.Background(), owner, CreateFileParams{
		Name: "pic.png",
		Type: model.FileTypeImage,
		Data: b64("img"),
	})
	require.NoError(t, err)

	// malformed id is an authorization failure, not a 404
	_, err = svc.SetVisibility(owner, "not-a-uuid", true)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.SetVisibility(other, out.ID, true)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.SetVisibility(owner, out.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsPublic)

	// only isPublic changed
	assert.Equal(t, out.ID, updated.ID)
	assert.Equal(t, out.Name, updated.Name)
	assert.Equal(t, out.ParentID, updated.ParentID)

	updated, err = svc.SetVisibility(owner, out.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsPublic)
}

func TestFileService_ContentVisibility(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newFileService()
	owner := testUser()
	other := testUser()
	ctx := context.Background()

	out, err := svc.Create(ctx, owner, CreateFileParams{
		Name: "report.txt",
		Type: model.FileTypeFile,
		Data: b64("classified"),
	})
	require.NoError(t, err)

	// private: anonymous and non-owner reads look like nonexistence
	_, _, err = svc.Content(ctx, nil, out.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.Content(ctx, other, out.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)

	// owner always reads their own file
	data, name, err := svc.Content(ctx, owner, out.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("classified"), data)
	assert.Equal(t, "report.txt", name)

	// publish, then anonymous read succeeds
	_, err = svc.SetVisibility(owner, out.ID, true)
	require.NoError(t, err)

	data, _, err = svc.Content(ctx, nil, out.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("classified"), data)

	// unpublish closes it again
	_, err = svc.SetVisibility(owner, out.ID, false)
	require.NoError(t, err)

	_, _, err = svc.Content(ctx, nil, out.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileService_ContentEdgeCases(t *testing.T) {
	t.Parallel()
	svc, files, store, _ := newFileService()
	user := testUser()
	ctx := context.Background()

	_, _, err := svc.Content(ctx, user, "not-a-uuid", "")
	assert.ErrorIs(t, err, ErrNotFound)

	folder, err := svc.Create(ctx, user, CreateFileParams{
		Name: "dir",
		Type: model.FileTypeFolder,
	})
	require.NoError(t, err)

	_, _, err = svc.Content(ctx, user, folder.ID, "")
	assert.ErrorIs(t, err, ErrFolderNoContent)

	// missing blob reads as nonexistence
	out, err := svc.Create(ctx, user, CreateFileParams{
		Name: "gone.txt",
		Type: model.FileTypeFile,
		Data: b64("x"),
	})
	require.NoError(t, err)

	rec, err := files.ByID(out.ID)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, rec.LocalPath))

	_, _, err = svc.Content(ctx, user, out.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileService_ContentVariant(t *testing.T) {
	t.Parallel()
	svc, files, store, _ := newFileService()
	user := testUser()
	ctx := context.Background()

	out, err := svc.Create(ctx, user, CreateFileParams{
		Name: "photo.png",
		Type: model.FileTypeImage,
		Data: b64("full size"),
	})
	require.NoError(t, err)

	rec, err := files.ByID(out.ID)
	require.NoError(t, err)

	// derivative produced by the external worker
	store.blobs[rec.LocalPath+"_250"] = []byte("250px")

	data, _, err := svc.Content(ctx, user, out.ID, "250")
	require.NoError(t, err)
	assert.Equal(t, []byte("250px"), data)

	// unrendered variant reads as missing
	_, _, err = svc.Content(ctx, user, out.ID, "100")
	assert.ErrorIs(t, err, ErrNotFound)
}
