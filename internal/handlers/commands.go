package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/Gamma29/loot/internal/common"
	"github.com/Gamma29/loot/internal/services/game"
	"github.com/Gamma29/loot/internal/services/resolve"
	"github.com/Gamma29/loot/internal/services/userlist"
)

// CommandName identifies one operation of the query protocol. The set is
// closed: the dispatcher rejects anything else.
type CommandName string

const (
	CommandGetVersion            CommandName = "getVersion"
	CommandGetSettings           CommandName = "getSettings"
	CommandGetLanguages          CommandName = "getLanguages"
	CommandGetGameTypes          CommandName = "getGameTypes"
	CommandGetInstalledGames     CommandName = "getInstalledGames"
	CommandGetGameData           CommandName = "getGameData"
	CommandChangeGame            CommandName = "changeGame"
	CommandGetConflictingPlugins CommandName = "getConflictingPlugins"
	CommandCopyMetadata          CommandName = "copyMetadata"
	CommandClearPluginMetadata   CommandName = "clearPluginMetadata"
	CommandClearAllMetadata      CommandName = "clearAllMetadata"
)

// Query is one request of the command protocol: an operation name plus
// its positional arguments.
type Query struct {
	Name CommandName     `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// QueryError is a transport-visible failure: a code plus message, distinct
// from the fail-open diagnostics the pipeline injects into snapshots.
type QueryError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *QueryError) Error() string {
	return e.Message
}

const (
	// CodeUnknown covers failures without a more specific code.
	CodeUnknown = -1
	// CodeBadRequest marks malformed queries or arguments.
	CodeBadRequest = 1
)

func badRequest(format string, args ...interface{}) *QueryError {
	return &QueryError{Code: CodeBadRequest, Message: fmt.Sprintf(format, args...)}
}

// languageOption is one supported message language.
type languageOption struct {
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

var supportedLanguages = []languageOption{
	{Name: "English", Locale: "en"},
	{Name: "Español", Locale: "es"},
	{Name: "Русский", Locale: "ru"},
	{Name: "Français", Locale: "fr"},
	{Name: "中文", Locale: "zh"},
	{Name: "Polski", Locale: "pl"},
	{Name: "Deutsch", Locale: "de"},
}

// gameTypes are the supported game identifiers.
var gameTypes = []string{"tes4", "tes5", "fo3", "fonv"}

// Dispatcher routes queries to the services implementing them. Commands
// run one at a time: session state is shared mutable data and the
// pipeline requires external serialization.
type Dispatcher struct {
	mu       sync.Mutex
	config   *common.Config
	manager  *game.Manager
	resolver *resolve.Service
	userlist *userlist.Service
	logger   arbor.ILogger
}

// NewDispatcher creates a command dispatcher.
func NewDispatcher(config *common.Config, manager *game.Manager, resolver *resolve.Service, userlistSvc *userlist.Service, logger arbor.ILogger) *Dispatcher {
	return &Dispatcher{
		config:   config,
		manager:  manager,
		resolver: resolver,
		userlist: userlistSvc,
		logger:   logger,
	}
}

// Locker exposes the command lock so collaborators that mutate session
// state out of band (the masterlist reload watcher) can serialize against
// in-flight commands.
func (d *Dispatcher) Locker() sync.Locker {
	return &d.mu
}

// Dispatch executes one query and returns its payload. Errors are
// QueryError values carrying a transport code.
func (d *Dispatcher) Dispatch(ctx context.Context, query Query) (interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.logger.Debug().Str("command", string(query.Name)).Msg("Dispatching query")

	switch query.Name {
	case CommandGetVersion:
		return common.GetVersion(), nil

	case CommandGetSettings:
		return d.settingsView(), nil

	case CommandGetLanguages:
		return supportedLanguages, nil

	case CommandGetGameTypes:
		return gameTypes, nil

	case CommandGetInstalledGames:
		return d.manager.Folders(), nil

	case CommandGetGameData:
		return d.resolver.GameData(d.manager.Current(), d.config.Language), nil

	case CommandChangeGame:
		folder, err := singleStringArg(query.Args)
		if err != nil {
			return nil, err
		}
		d.logger.Info().Str("folder", folder).Msg("Changing game")
		session, changeErr := d.manager.ChangeGame(folder)
		if changeErr != nil {
			return nil, badRequest("%s", changeErr)
		}
		return d.resolver.GameData(session, d.config.Language), nil

	case CommandGetConflictingPlugins:
		name, err := singleStringArg(query.Args)
		if err != nil {
			return nil, err
		}
		d.logger.Debug().Str("plugin", name).Msg("Searching for conflicting plugins")
		conflicts, findErr := d.manager.Current().FindConflicts(name)
		if findErr != nil {
			return nil, &QueryError{Code: CodeUnknown, Message: findErr.Error()}
		}
		return conflicts, nil

	case CommandCopyMetadata:
		name, err := singleStringArg(query.Args)
		if err != nil {
			return nil, err
		}
		text, copyErr := d.userlist.CopyMetadata(d.manager.Current(), name)
		if copyErr != nil {
			return nil, &QueryError{Code: CodeUnknown, Message: copyErr.Error()}
		}
		return text, nil

	case CommandClearPluginMetadata:
		name, err := singleStringArg(query.Args)
		if err != nil {
			return nil, err
		}
		if clearErr := d.userlist.ClearPlugin(ctx, d.manager.Current(), name); clearErr != nil {
			return nil, &QueryError{Code: CodeUnknown, Message: clearErr.Error()}
		}
		return "", nil

	case CommandClearAllMetadata:
		if err := d.userlist.ClearAll(ctx, d.manager.Current()); err != nil {
			return nil, &QueryError{Code: CodeUnknown, Message: err.Error()}
		}
		return "", nil

	default:
		return nil, badRequest("unknown command %q", query.Name)
	}
}

// settingsView is the settings payload served to clients.
type settingsView struct {
	Language    string     `json:"language"`
	DefaultGame string     `json:"game"`
	Games       []gameView `json:"games"`
}

type gameView struct {
	Name   string `json:"name"`
	Folder string `json:"folder"`
	Type   string `json:"type"`
}

func (d *Dispatcher) settingsView() settingsView {
	view := settingsView{
		Language:    d.config.Language,
		DefaultGame: d.config.DefaultGame,
		Games:       []gameView{},
	}
	for _, g := range d.config.Games {
		view.Games = append(view.Games, gameView{Name: g.Name, Folder: g.Folder, Type: g.Type})
	}
	return view
}

// singleStringArg decodes the positional argument list of commands that
// take exactly one string.
func singleStringArg(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", badRequest("missing arguments")
	}
	var args []string
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", badRequest("failed to parse arguments: %s", err)
	}
	if len(args) != 1 {
		return "", badRequest("expected one argument, got %d", len(args))
	}
	return args[0], nil
}
