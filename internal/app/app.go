package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/Gamma29/loot/internal/common"
	"github.com/Gamma29/loot/internal/handlers"
	"github.com/Gamma29/loot/internal/interfaces"
	"github.com/Gamma29/loot/internal/models"
	"github.com/Gamma29/loot/internal/services/conditions"
	"github.com/Gamma29/loot/internal/services/game"
	"github.com/Gamma29/loot/internal/services/metadata"
	"github.com/Gamma29/loot/internal/services/resolve"
	"github.com/Gamma29/loot/internal/services/scheduler"
	"github.com/Gamma29/loot/internal/services/userlist"
	"github.com/Gamma29/loot/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Services
	MetadataLoader  *metadata.Loader
	GameManager     *game.Manager
	ResolveService  *resolve.Service
	UserlistService *userlist.Service
	Scheduler       *scheduler.Service

	// Handlers
	Dispatcher   *handlers.Dispatcher
	QueryHandler *handlers.QueryHandler
	WSHandler    *handlers.WebSocketHandler
	APIHandler   *handlers.APIHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initGames(); err != nil {
		return nil, fmt.Errorf("failed to initialize games: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	// The reload watcher serializes against in-flight commands via the
	// dispatcher's lock, so it starts last.
	app.Scheduler = scheduler.NewService(app.GameManager, app.MetadataLoader, app.Dispatcher.Locker(), app.Logger)
	if schedule := cfg.Masterlist.ReloadSchedule; schedule != "" {
		if err := app.Scheduler.Start(schedule); err != nil {
			return nil, fmt.Errorf("failed to start masterlist watcher: %w", err)
		}
	}

	logger.Info().
		Int("games", len(cfg.Games)).
		Str("default_game", cfg.DefaultGame).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}
	a.StorageManager = storageManager

	a.Logger.Debug().
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage initialized")

	return nil
}

// initServices creates the metadata pipeline services.
func (a *App) initServices() error {
	a.MetadataLoader = metadata.NewLoader(a.Logger)

	factory := func(state conditions.State) interfaces.ConditionEvaluator {
		return conditions.New(state, a.Logger)
	}
	a.ResolveService = resolve.NewService(factory, a.Logger)

	a.UserlistService = userlist.NewService(
		a.StorageManager.UserlistStorage(),
		userlist.NewMemoryClipboard(),
		a.Logger,
	)

	return nil
}

// initGames builds one session per configured game and loads its
// plugins and metadata layers.
func (a *App) initGames() error {
	a.GameManager = game.NewManager()

	ctx := context.Background()
	for _, gc := range a.Config.Games {
		session, err := a.loadGame(ctx, gc)
		if err != nil {
			return fmt.Errorf("failed to load game %s: %w", gc.Folder, err)
		}
		a.GameManager.Add(session)
	}

	if a.Config.DefaultGame != "" {
		if _, err := a.GameManager.ChangeGame(a.Config.DefaultGame); err != nil {
			return fmt.Errorf("failed to select default game: %w", err)
		}
	}

	return nil
}

func (a *App) loadGame(ctx context.Context, gc common.GameConfig) (*game.Session, error) {
	identifierLoader := game.NewManifestIdentifierLoader(a.MetadataLoader, gc.PluginsPath, a.Logger)
	session := game.NewSession(gc, identifierLoader, a.Logger)

	plugins, err := a.MetadataLoader.LoadInstallManifest(gc.PluginsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load install manifest: %w", err)
	}
	session.SetPlugins(plugins)

	masterlist, err := a.MetadataLoader.LoadDocument(gc.MasterlistPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load masterlist: %w", err)
	}
	info, err := a.MetadataLoader.DocumentInfo(gc.MasterlistPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read masterlist info: %w", err)
	}
	session.SetMasterlist(*masterlist, info)

	userlistDoc, err := a.loadUserlist(ctx, gc)
	if err != nil {
		return nil, fmt.Errorf("failed to load userlist: %w", err)
	}
	session.SetUserlist(userlistDoc)

	a.Logger.Info().
		Str("game", gc.Name).
		Str("folder", gc.Folder).
		Int("plugins", len(plugins)).
		Int("masterlist_entries", len(masterlist.Plugins)).
		Int("userlist_entries", len(userlistDoc.Plugins)).
		Msg("Game loaded")

	return session, nil
}

// loadUserlist reads the user layer. Stored records are authoritative;
// the userlist document seeds the store exactly once, tracked by a
// per-folder marker so records cleared through the store stay cleared
// across restarts.
func (a *App) loadUserlist(ctx context.Context, gc common.GameConfig) (models.MetadataList, error) {
	fileDoc, err := a.MetadataLoader.LoadDocument(gc.UserlistPath)
	if err != nil {
		return models.MetadataList{}, err
	}

	store := a.StorageManager.UserlistStorage()
	seeded, err := store.Seeded(ctx, gc.Folder)
	if err != nil {
		return models.MetadataList{}, fmt.Errorf("failed to check userlist store state: %w", err)
	}

	if !seeded {
		for _, meta := range fileDoc.Plugins {
			if err := store.Save(ctx, gc.Folder, meta); err != nil {
				return models.MetadataList{}, fmt.Errorf("failed to migrate userlist record %s: %w", meta.Name, err)
			}
		}
		if err := store.MarkSeeded(ctx, gc.Folder); err != nil {
			return models.MetadataList{}, fmt.Errorf("failed to mark userlist store seeded: %w", err)
		}
		return *fileDoc, nil
	}

	stored, err := store.List(ctx, gc.Folder)
	if err != nil {
		return models.MetadataList{}, fmt.Errorf("failed to list stored metadata: %w", err)
	}

	list := models.MetadataList{Messages: fileDoc.Messages}
	for _, meta := range stored {
		list.Upsert(meta)
	}
	return list, nil
}

// initHandlers creates the transport handlers.
func (a *App) initHandlers() error {
	a.Dispatcher = handlers.NewDispatcher(a.Config, a.GameManager, a.ResolveService, a.UserlistService, a.Logger)
	a.QueryHandler = handlers.NewQueryHandler(a.Dispatcher, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.Dispatcher, &a.Config.WebSocket, a.Logger)
	a.APIHandler = handlers.NewAPIHandler()
	return nil
}

// Close shuts down background services and the storage layer.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
			return err
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
