package routes

import (
	"net/http"

	"github.com/cabinetd/cabinet/internal/app"
	"github.com/cabinetd/cabinet/internal/handler"
	"github.com/cabinetd/cabinet/internal/middleware"
)

func SetupRoutes(a *app.App) http.Handler {
	// Handlers
	status := handler.NewStatusHandler(a.DB, a.Identities, a.UserService)
	auth := handler.NewAuthHandler(a.SessionService)
	users := handler.NewUserHandler(a.UserService)
	files := handler.NewFileHandler(a.FileService)

	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /status", status.Status)
	mux.HandleFunc("GET /stats", status.Stats)

	// Users
	mux.HandleFunc("POST /users", users.Register)
	mux.HandleFunc("GET /users/me", users.Me)

	// Sessions (sign-in rate limited per IP)
	rateLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("GET /connect", rateLimiter(auth.Connect))
	mux.HandleFunc("GET /disconnect", auth.Disconnect)

	// Files
	mux.HandleFunc("POST /files", files.Create)
	mux.HandleFunc("GET /files", files.List)
	mux.HandleFunc("GET /files/{id}", files.Get)
	mux.HandleFunc("PUT /files/{id}/publish", files.Publish)
	mux.HandleFunc("PUT /files/{id}/unpublish", files.Unpublish)
	mux.HandleFunc("GET /files/{id}/data", files.Data)

	return middleware.Chain(mux,
		middleware.RequestLogging,
		middleware.Session(a.SessionService),
	)
}
