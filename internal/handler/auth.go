package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cabinetd/cabinet/internal/ctxkeys"
	"github.com/cabinetd/cabinet/internal/middleware"
	"github.com/cabinetd/cabinet/internal/service"
)

type AuthHandler struct {
	sessionService *service.SessionService
}

func NewAuthHandler(sessionService *service.SessionService) *AuthHandler {
	return &AuthHandler{
		sessionService: sessionService,
	}
}

// Connect exchanges HTTP Basic credentials for a session token.
func (h *AuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		unauthorized(w)
		return
	}

	token, err := h.sessionService.Connect(r.Context(), email, password)
	if errors.Is(err, service.ErrUnauthorized) {
		unauthorized(w)
		return
	}
	if err != nil {
		slog.Error("sign-in failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Disconnect revokes the session behind the X-Token header.
func (h *AuthHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(middleware.TokenHeader)

	err := h.sessionService.Disconnect(r.Context(), token)
	if errors.Is(err, service.ErrUnauthorized) {
		unauthorized(w)
		return
	}
	if err != nil {
		slog.Error("sign-out failed", "error", err, "user_id", userID(r))
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func userID(r *http.Request) string {
	user := ctxkeys.User(r.Context())
	if user == nil {
		return ""
	}
	return user.ID
}
