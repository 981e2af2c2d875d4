package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cabinetd/cabinet/internal/model"
	"github.com/cabinetd/cabinet/internal/queue"
	"github.com/cabinetd/cabinet/internal/repository"
	"github.com/cabinetd/cabinet/internal/storage"
)

// Error strings below are part of the client contract and must not change.
var (
	ErrMissingName     = errors.New("Missing name")
	ErrMissingType     = errors.New("Missing type")
	ErrMissingData     = errors.New("Missing data")
	ErrParentNotFound  = errors.New("Parent not found")
	ErrParentNotFolder = errors.New("Parent is not a folder")
	ErrNotFound        = errors.New("Not found")
	ErrFolderNoContent = errors.New("A folder doesn't have content")
)

// PageSize is the fixed listing window.
const PageSize = 20

// CreateFileParams carries a create request. Data is base64-encoded content
// bytes and is required for every type except folder.
type CreateFileParams struct {
	Name     string
	Type     string
	ParentID string
	IsPublic bool
	Data     string
}

// FileService owns the file and folder semantics: hierarchy validation on
// create, ownership and visibility on read, and the paginated listing scan.
type FileService struct {
	files      repository.FileRepository
	storage    storage.Storage
	dispatcher queue.Dispatcher
}

func NewFileService(files repository.FileRepository, storage storage.Storage, dispatcher queue.Dispatcher) *FileService {
	return &FileService{
		files:      files,
		storage:    storage,
		dispatcher: dispatcher,
	}
}

// Create validates and inserts a file record. Checks run in a fixed order
// and the first failure wins. Folders carry no content; files and images
// have their bytes placed in the blob store before the catalog insert, and
// images additionally trigger a best-effort thumbnail job.
func (s *FileService) Create(ctx context.Context, user *model.User, p CreateFileParams) (*model.FileOut, error) {
	if p.Name == "" {
		return nil, ErrMissingName
	}
	if !model.ValidFileType(p.Type) {
		return nil, ErrMissingType
	}
	if p.Type != model.FileTypeFolder && p.Data == "" {
		return nil, ErrMissingData
	}

	parentID := p.ParentID
	if parentID == "" {
		parentID = model.RootFolderID
	}
	if parentID != model.RootFolderID {
		if _, err := uuid.Parse(parentID); err != nil {
			return nil, ErrParentNotFound
		}

		parent, err := s.files.ByID(parentID)
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrParentNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up parent: %w", err)
		}
		if !parent.IsFolder() {
			return nil, ErrParentNotFolder
		}
	}

	file := &model.File{
		UserID:   user.ID,
		Name:     p.Name,
		Type:     p.Type,
		ParentID: parentID,
		IsPublic: p.IsPublic,
	}

	if p.Type == model.FileTypeFolder {
		err := s.files.Insert(file)
		if err != nil {
			return nil, fmt.Errorf("failed to insert folder: %w", err)
		}
		return file.Out(), nil
	}

	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid file data: %w", err)
	}

	location, err := s.storage.Place(ctx, data)
	if err != nil {
		return nil, err
	}
	file.LocalPath = location

	err = s.files.Insert(file)
	if err != nil {
		// The blob is already on disk; clean it up best-effort so the
		// placement root does not accumulate orphans.
		delErr := s.storage.Delete(ctx, location)
		if delErr != nil {
			slog.Error("failed to delete blob during cleanup", "error", delErr, "location", location)
		}
		return nil, fmt.Errorf("failed to insert file record: %w", err)
	}

	if p.Type == model.FileTypeImage {
		enqErr := s.dispatcher.Enqueue(model.ThumbnailJob{FileID: file.ID, UserID: user.ID})
		if enqErr != nil {
			// Fire-and-forget: a lost thumbnail job never fails the upload.
			slog.Warn("failed to enqueue thumbnail job", "error", enqErr, "file_id", file.ID)
		}
	}

	return file.Out(), nil
}

// ByID returns a file owned by the caller. A malformed id, a missing record
// and another user's record are indistinguishable: all are ErrNotFound.
func (s *FileService) ByID(user *model.User, fileID string) (*model.FileOut, error) {
	if _, err := uuid.Parse(fileID); err != nil {
		return nil, ErrNotFound
	}

	file, err := s.files.ByIDAndUser(fileID, user.ID)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return file.Out(), nil
}

// List pages through the children of a parent in insertion order, 20 per
// page. Listing is permissive where retrieval is strict: a parent that does
// not exist or is not a folder yields an empty page, never an error. The
// match is by parent only, not additionally by owner; records of other users
// sharing the parent are included. Inherited behavior, kept on purpose.
func (s *FileService) List(user *model.User, parentID string, page int) ([]*model.FileOut, error) {
	if parentID == "" {
		parentID = model.RootFolderID
	}
	if page < 0 {
		page = 0
	}

	files, err := s.files.ByParent(parentID, page*PageSize, PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	out := make([]*model.FileOut, 0, len(files))
	for _, f := range files {
		out = append(out, f.Out())
	}
	return out, nil
}

// SetVisibility flips isPublic on a file owned by the caller and returns the
// updated projection. A malformed id is ErrUnauthorized, not ErrNotFound;
// the asymmetry with ByID is observed client behavior and is preserved.
func (s *FileService) SetVisibility(user *model.User, fileID string, public bool) (*model.FileOut, error) {
	if _, err := uuid.Parse(fileID); err != nil {
		return nil, ErrUnauthorized
	}

	_, err := s.files.ByIDAndUser(fileID, user.ID)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	file, err := s.files.SetPublic(fileID, public)
	if err != nil {
		return nil, fmt.Errorf("failed to update visibility: %w", err)
	}

	return file.Out(), nil
}

// Content fetches the bytes behind a file record. user may be nil: public
// files are readable anonymously. Private files are only readable by their
// owner, and a mismatch looks exactly like a missing record. A non-empty
// variant selects a pre-rendered derivative written by the thumbnail worker.
func (s *FileService) Content(ctx context.Context, user *model.User, fileID, variant string) ([]byte, string, error) {
	if _, err := uuid.Parse(fileID); err != nil {
		return nil, "", ErrNotFound
	}

	file, err := s.files.ByID(fileID)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file: %w", err)
	}

	if !file.IsPublic && (user == nil || user.ID != file.UserID) {
		return nil, "", ErrNotFound
	}
	if file.IsFolder() {
		return nil, "", ErrFolderNoContent
	}

	location := file.LocalPath
	if variant != "" {
		location += "_" + variant
	}

	data, err := s.storage.Read(ctx, location)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read blob: %w", err)
	}

	return data, file.Name, nil
}
