package model

import (
	"time"
)

const (
	FileTypeFolder = "folder"
	FileTypeFile   = "file"
	FileTypeImage  = "image"

	// RootFolderID is the sentinel parent id meaning "top level, no parent".
	RootFolderID = "0"
)

// ValidFileType reports whether t is one of the three supported record types.
func ValidFileType(t string) bool {
	return t == FileTypeFolder || t == FileTypeFile || t == FileTypeImage
}

// File is a catalog record for a folder, a regular file, or an image.
// LocalPath is the opaque blob store location and is set exactly when
// Type != folder. Position is assigned by the catalog on insert and defines
// the natural listing order.
type File struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Type      string    `db:"type"`
	ParentID  string    `db:"parent_id"`
	IsPublic  bool      `db:"is_public"`
	LocalPath string    `db:"local_path"`
	Position  int64     `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

func (f *File) IsFolder() bool {
	return f.Type == FileTypeFolder
}

// FileOut is the outward projection of a File. LocalPath never leaves the
// service layer, so the projection has no field for it.
type FileOut struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID string `json:"parentId"`
}

func (f *File) Out() *FileOut {
	return &FileOut{
		ID:       f.ID,
		UserID:   f.UserID,
		Name:     f.Name,
		Type:     f.Type,
		IsPublic: f.IsPublic,
		ParentID: f.ParentID,
	}
}
