package handler

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/cabinetd/cabinet/internal/identity"
	"github.com/cabinetd/cabinet/internal/service"
)

type StatusHandler struct {
	db          *sqlx.DB
	identities  identity.Store
	userService *service.UserService
}

func NewStatusHandler(db *sqlx.DB, identities identity.Store, userService *service.UserService) *StatusHandler {
	return &StatusHandler{
		db:          db,
		identities:  identities,
		userService: userService,
	}
}

// Status reports liveness of the two backing stores.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	catalogOK := h.db.PingContext(r.Context()) == nil
	identityOK := h.identities.Ping(r.Context()) == nil

	writeJSON(w, http.StatusOK, map[string]bool{
		"catalog":  catalogOK,
		"identity": identityOK,
	})
}

// Stats reports user and file record counts.
func (h *StatusHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userService.Stats()
	if err != nil {
		slog.Error("stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
