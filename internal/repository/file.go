package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cabinetd/cabinet/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

// FileRepository is the catalog of file and folder records. Listing order is
// the insertion order of the records (the position column).
type FileRepository interface {
	Insert(file *model.File) error
	ByID(id string) (*model.File, error)
	ByIDAndUser(id, userID string) (*model.File, error)
	ByParent(parentID string, offset, limit int) ([]*model.File, error)
	SetPublic(id string, public bool) (*model.File, error)
	Count() (int64, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Insert(file *model.File) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}

	// position is assigned by the catalog so listings follow insertion order
	query := `INSERT INTO files (id, user_id, name, type, parent_id, is_public, local_path, position, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, (SELECT COALESCE(MAX(position), 0) + 1 FROM files), $8)
	          RETURNING position`

	err := r.db.Get(&file.Position, query,
		file.ID,
		file.UserID,
		file.Name,
		file.Type,
		file.ParentID,
		file.IsPublic,
		file.LocalPath,
		file.CreatedAt,
	)

	return err
}

func (r *fileRepository) ByID(id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1`

	err := r.db.Get(file, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}

func (r *fileRepository) ByIDAndUser(id, userID string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1 AND user_id = $2`

	err := r.db.Get(file, query, id, userID)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}

// ByParent scans records sharing a parent in insertion order. The match is
// by parent only, across owners; callers rely on that (see FileService.List).
func (r *fileRepository) ByParent(parentID string, offset, limit int) ([]*model.File, error) {
	files := []*model.File{}
	query := `SELECT * FROM files WHERE parent_id = $1 ORDER BY position LIMIT $2 OFFSET $3`

	err := r.db.Select(&files, query, parentID, limit, offset)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// SetPublic atomically updates the visibility flag and returns the updated
// record, mirroring a findOneAndUpdate. No other field is touched.
func (r *fileRepository) SetPublic(id string, public bool) (*model.File, error) {
	file := &model.File{}
	query := `UPDATE files SET is_public = $1 WHERE id = $2 RETURNING *`

	err := r.db.Get(file, query, public, id)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) Count() (int64, error) {
	var n int64
	err := r.db.Get(&n, `SELECT COUNT(*) FROM files`)
	return n, err
}
