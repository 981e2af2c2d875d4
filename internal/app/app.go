package app

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/cabinetd/cabinet/internal/config"
	"github.com/cabinetd/cabinet/internal/db"
	"github.com/cabinetd/cabinet/internal/identity"
	"github.com/cabinetd/cabinet/internal/model"
	"github.com/cabinetd/cabinet/internal/queue"
	"github.com/cabinetd/cabinet/internal/repository"
	"github.com/cabinetd/cabinet/internal/service"
	"github.com/cabinetd/cabinet/internal/storage"
)

// App owns every constructed dependency. Store handles are built here and
// injected downward; nothing in the tree reaches for a global client.
type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Identities     identity.Store
	Storage        storage.Storage
	Dispatcher     queue.Dispatcher
	SessionService *service.SessionService
	UserService    *service.UserService
	FileService    *service.FileService
}

func New(cfg *config.Config) (*App, error) {
	// Catalog database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %v", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Identity store
	identities, err := newIdentityStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity store: %v", err)
	}

	// Blob storage
	blobStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Thumbnail dispatch. Jobs cross the process boundary here; the worker
	// that renders derivatives runs elsewhere.
	dispatcher := queue.NewChannelDispatcher(cfg.QueueSize, func(job model.ThumbnailJob) {
		slog.Debug("thumbnail job handed to worker", "file_id", job.FileID, "user_id", job.UserID)
	})

	// Services
	sessionService := service.NewSessionService(identities, userRepository, cfg.SessionTTL)
	userService := service.NewUserService(userRepository, fileRepository)
	fileService := service.NewFileService(fileRepository, blobStorage, dispatcher)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Identities:     identities,
		Storage:        blobStorage,
		Dispatcher:     dispatcher,
		SessionService: sessionService,
		UserService:    userService,
		FileService:    fileService,
	}, nil
}

func newIdentityStore(cfg *config.Config) (identity.Store, error) {
	switch cfg.IdentityDriver {
	case "", "badger":
		slog.Info("initializing identity store", "driver", "badger", "path", cfg.IdentityPath)
		return identity.NewBadgerStore(cfg.IdentityPath)
	case "memory":
		slog.Info("initializing identity store", "driver", "memory")
		return identity.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown identity driver %q", cfg.IdentityDriver)
	}
}

func (a *App) Close() error {
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}
	if a.Identities != nil {
		err := a.Identities.Close()
		if err != nil {
			slog.Error("failed to close identity store", "error", err)
		}
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
