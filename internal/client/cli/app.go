package cli

import (
	"bufio"
	"context"
	"errors"
	"log"
	"os"
	"time"

	"assettrack/internal/client/api"
	"assettrack/internal/client/config"
	"assettrack/internal/client/models"
	"assettrack/internal/client/services"
	"assettrack/internal/client/storage"
	"assettrack/internal/common"
	"assettrack/internal/logging"
	"assettrack/internal/netx"
	"assettrack/internal/wire"
)

// authorizer, admitter, and syncer are the slices of the service layer the
// REPL commands actually call. Tests substitute fakes.
type authorizer interface {
	Login(ctx context.Context, username, password string) (*models.AuthToken, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (*models.AuthToken, error)
}

type admitter interface {
	Admit(ctx context.Context, assetTag, serial string) (*models.Pair, error)
	ConfirmTag(ctx context.Context, tag string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Pair, error)
}

type syncer interface {
	Submit(ctx context.Context) (*models.UploadBatch, error)
	Drain(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// remote is the part of the authority API the REPL talks to directly:
// online-only lookups that have no local counterpart.
type remote interface {
	Search(ctx context.Context, assetTag, serial string) (*wire.SearchResult, error)
	Replace(ctx context.Context, req wire.ReplaceRequest) (*wire.ReplaceResponse, error)
}

// App is the interactive scanner client: local-first pair admission, a
// durable upload queue, and an online/offline indicator in the prompt.
type App struct {
	config   *config.Config
	auth     authorizer
	pairs    admitter
	sync     syncer
	remote   remote
	monitor  *netx.Monitor
	store    *storage.Repositories
	client   api.Client
	userName string
	reader   *bufio.Reader
	scanner  Scanner
}

// NewApp wires the local database, the authority client, the connectivity
// monitor, and the services into a runnable App.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	store, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.ServerURL)
	monitor := netx.NewMonitor(apiClient, c.OnlineCheckInterval)

	authService := services.NewAuthService(apiClient, store.AuthTokens, store.Pairs, store.Batches, logger)
	pairService := services.NewPairService(store.Pairs, store.AssetTags)
	syncService := services.NewSyncService(apiClient, store.Pairs, store.Batches, store.AssetTags, monitor, logger)

	reader := bufio.NewReader(os.Stdin)

	return &App{
		config:  c,
		auth:    authService,
		pairs:   pairService,
		sync:    syncService,
		remote:  apiClient,
		monitor: monitor,
		store:   store,
		client:  apiClient,
		reader:  reader,
		scanner: NewPromptScanner(reader, os.Stdout),
	}, nil
}

// Run restores a persisted session if one exists, starts the connectivity
// watcher, and enters the REPL. It blocks until the user exits or ctx is
// cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if token, err := a.auth.Restore(ctx); err == nil {
		a.userName = token.Username
		log.Printf("Restored session for %s", token.Username)
	} else if !errors.Is(err, common.ErrAuthRequired) {
		log.Printf("Session restore failed: %s", err.Error())
	}

	go a.monitor.Run(ctx)

	a.Root(ctx)
}

// Close releases the local database and the authority client.
func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.client != nil {
		_ = a.client.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

// probeNow runs one immediate reachability probe so online-only commands do
// not report "offline" just because the ticker has not fired yet.
func (a *App) probeNow(ctx context.Context) netx.State {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.client.Ping(probeCtx); err != nil {
		a.monitor.Set(ctx, netx.StateOffline)
	} else {
		a.monitor.Set(ctx, netx.StateOnline)
	}
	return a.monitor.State()
}
