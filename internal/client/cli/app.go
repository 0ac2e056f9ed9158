package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/client/config"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/client/services"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/filex"
	"github.com/dmitrijs2005/docvault/internal/logging"
)

type Mode string

const (
	ModeOffline   Mode = "offline"
	ModeOnline    Mode = "online"
	ModeAnonymous Mode = "anonymous"
)

type documentLoader interface {
	Load(ctx context.Context) (services.LoadResult, error)
}

type documentMutator interface {
	Create(ctx context.Context, rec models.DocumentRecord) (services.MutationResult, error)
	Update(ctx context.Context, localID int64, patch models.DocumentPatch) (services.MutationResult, error)
	ToggleFavorite(ctx context.Context, localID int64) (services.MutationResult, error)
	Delete(ctx context.Context, localID int64) (services.MutationResult, error)
	SweepPending(ctx context.Context) ([]services.MutationResult, error)
}

type quotaReporter interface {
	Usage(ctx context.Context) (models.QuotaSnapshot, error)
	Severity(snap models.QuotaSnapshot) models.Severity
	CanCreate(ctx context.Context) error
}

type App struct {
	config   *config.Config
	loader   documentLoader
	mutator  documentMutator
	quota    quotaReporter
	log      logging.Logger
	mediaDir string
	Mode     Mode
	out      io.Writer
	db       *sql.DB
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, repos, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	mediaDir, err := filex.EnsureSubDir(c.MediaDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if c.PromptToken {
		token, err := readSecret("Access token:")
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		c.AccessToken = token
	}

	gw := client.NewHTTPGateway(client.Options{
		BaseURL:      c.ServerURL,
		AccessToken:  c.AccessToken,
		Timeout:      c.RequestTimeout,
		Retries:      c.RetryCount,
		SignedURLTTL: c.SignedURLTTL,
		Logger:       log,
	})

	deviceID, err := services.RegisterDevice(ctx, gw, repos.Metadata, c.UserID, c.DeviceID)
	switch {
	case errors.Is(err, common.ErrDeviceLimitReached):
		fmt.Fprintln(os.Stderr, "Device limit reached for this account; running with local changes only until a device is removed.")
	case err != nil:
		log.Warn(ctx, "device registration failed", "error", err)
	default:
		log.Debug(ctx, "device registered", "device_id", deviceID)
	}

	sc := services.NewSyncClient(repos.Documents, gw, c.UserID, log)
	ds := services.NewDocumentService(repos.Documents, repos.Metadata, gw, sc, c.UserID, log)
	qs := services.NewQuotaService(gw, c.UserID, c.FreeBaseQuota, c.DangerThreshold, log)

	app := &App{
		config:   c,
		loader:   ds,
		mutator:  sc,
		quota:    qs,
		log:      log,
		mediaDir: mediaDir,
		out:      os.Stdout,
		db:       db,
	}
	return app, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.printf("Switched to %s mode\n", mode)
	}
}

// Run starts the REPL on stdin and blocks until the user quits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.printf("Welcome to docvault (type 'help' for commands)\n")
	_ = a.List(ctx, nil)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) getStatus() string {
	if a.Mode == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.Mode)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.outWriter(), format, args...)
}
