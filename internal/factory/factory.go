package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/gamerelay-go/internal/coordinator"
	"github.com/mcoot/gamerelay-go/internal/dependencies/clock"
	"github.com/mcoot/gamerelay-go/internal/dependencies/random"
	"github.com/mcoot/gamerelay-go/internal/services/session"
	"github.com/mcoot/gamerelay-go/internal/storage"
	"github.com/mcoot/gamerelay-go/internal/storage/memory"
	redisstorage "github.com/mcoot/gamerelay-go/internal/storage/redis"
	"github.com/mcoot/gamerelay-go/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	SessionController *session.Controller
	Coordinator       *coordinator.Coordinator
	Hub               *ws.Hub
	RelayHandler      *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Coordinator holds reclamation timing settings
	// If zero value, defaults to coordinator.DefaultConfig()
	Coordinator coordinator.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	coordCfg := cfg.Coordinator
	if coordCfg.GraceDelay == 0 {
		coordCfg = coordinator.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, coordCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, coordCfg coordinator.Config, logger *slog.Logger) *App {
	sessionController := session.NewController(store, clk, rnd, logger)
	hub := ws.NewHub(rnd, logger)
	coord := coordinator.New(coordCfg, sessionController, hub, clk, logger)
	relayHandler := ws.NewHandler(hub, coord, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		SessionController: sessionController,
		Coordinator:       coord,
		Hub:               hub,
		RelayHandler:      relayHandler,
	}
}
