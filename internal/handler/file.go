package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/cabinetd/cabinet/internal/ctxkeys"
	"github.com/cabinetd/cabinet/internal/service"
)

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

type createFileRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID any    `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

// parentID normalizes the parentId field: clients send either the numeric
// root sentinel 0 or a string id.
func (req *createFileRequest) parentID() string {
	switch v := req.ParentID.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Create handles POST /files.
func (h *FileHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	var req createFileRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing name")
		return
	}

	out, err := h.fileService.Create(r.Context(), user, service.CreateFileParams{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: req.parentID(),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		// Validation and placement failures alike are client errors with
		// the message as the body.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

// Get handles GET /files/{id}.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	out, err := h.fileService.ByID(user, r.PathValue("id"))
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.Error("get file failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// List handles GET /files?parentId=&page=.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	parentID := r.URL.Query().Get("parentId")

	// non-numeric page coerces to 0
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 0
	}

	out, err := h.fileService.List(user, parentID, page)
	if err != nil {
		slog.Error("list files failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// Publish handles PUT /files/{id}/publish.
func (h *FileHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, true)
}

// Unpublish handles PUT /files/{id}/unpublish.
func (h *FileHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, false)
}

func (h *FileHandler) setVisibility(w http.ResponseWriter, r *http.Request, public bool) {
	user := ctxkeys.User(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	out, err := h.fileService.SetVisibility(user, r.PathValue("id"), public)
	if errors.Is(err, service.ErrUnauthorized) {
		unauthorized(w)
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.Error("set visibility failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// Data handles GET /files/{id}/data?size=. The token is optional here:
// public files are served to anonymous callers.
func (h *FileHandler) Data(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	data, name, err := h.fileService.Content(r.Context(), user, r.PathValue("id"), r.URL.Query().Get("size"))
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if errors.Is(err, service.ErrFolderNoContent) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("read content failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(data)
	if err != nil {
		slog.Error("failed to write content", "error", err)
	}
}
