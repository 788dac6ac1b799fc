package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/erazemk/crudapp/internal/api"
	"github.com/erazemk/crudapp/internal/auth"
	"github.com/erazemk/crudapp/internal/config"
	"github.com/erazemk/crudapp/internal/db"
	"github.com/erazemk/crudapp/internal/logging"
	"github.com/erazemk/crudapp/internal/store"
	"github.com/erazemk/crudapp/internal/web"
)

const usage = `Usage: crudapp [command] [flags]

Commands:
  serve     run the HTTP server (default)
  migrate   apply database migrations and exit
  deluser   delete a user and all of their items (-username <name>)

Run "crudapp <command> -h" for the flags of a command. Every flag can also
be set through the environment or a .env file.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = serve(args)
	case "migrate":
		err = migrate(args)
	case "deluser":
		err = deleteUser(args)
	case "help":
		fmt.Fprint(os.Stdout, usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// setup loads configuration, builds the logger and opens the migrated
// database shared by every command.
func setup(fs *flag.FlagSet, args []string) (*config.Config, *zap.Logger, *sql.DB, error) {
	cfg, err := config.Load(fs, args)
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, nil, err
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Migrate(context.Background(), database); err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	return cfg, log, database, nil
}

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfg, log, database, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer database.Close()
	defer func() { _ = log.Sync() }()

	version, err := db.Version(context.Background(), database)
	if err != nil {
		return err
	}
	log.Info("database ready", zap.String("url", cfg.DatabaseURL), zap.Int("schema_version", version))

	handler, err := newHandler(context.Background(), cfg, database, log)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		sig := <-quit
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	log.Info("server started", zap.String("addr", "http://"+cfg.Addr()))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	log.Info("server stopped, closing database")
	return nil
}

// newHandler assembles the full HTTP surface: JSON API under /api, health
// and docs at the root, HTML pages for everything else.
func newHandler(ctx context.Context, cfg *config.Config, database *sql.DB, log *zap.Logger) (http.Handler, error) {
	secret, err := signingSecret(ctx, cfg, database, log)
	if err != nil {
		return nil, err
	}

	svc := &auth.Service{DB: database, Issuer: auth.NewIssuer(secret, cfg.TokenTTL)}

	pages, err := web.NewRouter(web.Options{
		DB:            database,
		Auth:          svc,
		Log:           log,
		Secret:        secret,
		SecureCookies: cfg.SecureCookies,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up web router: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Mount("/api", api.NewRouter(&api.Env{
		DB:            database,
		Auth:          svc,
		Log:           log,
		SecureCookies: cfg.SecureCookies,
	}))
	r.Get("/healthz", api.Health(database, log))
	r.Get("/docs", api.DocsPage)
	r.Get("/docs/openapi.json", api.OpenAPIJSON)
	r.Mount("/", pages)

	return r, nil
}

// signingSecret returns the configured secret, or the one stored in the
// database (generated on first run).
func signingSecret(ctx context.Context, cfg *config.Config, database *sql.DB, log *zap.Logger) (string, error) {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret, nil
	}
	secret, err := store.SigningSecret(ctx, database)
	if err != nil {
		return "", err
	}
	log.Debug("using signing secret stored in database")
	return secret, nil
}

func migrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	_, log, database, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer database.Close()
	defer func() { _ = log.Sync() }()

	version, err := db.Version(context.Background(), database)
	if err != nil {
		return err
	}
	log.Info("migrations applied", zap.Int("schema_version", version))
	return nil
}

func deleteUser(args []string) error {
	fs := flag.NewFlagSet("deluser", flag.ContinueOnError)
	username := fs.String("username", "", "name of the user to delete")

	_, log, database, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer database.Close()
	defer func() { _ = log.Sync() }()

	if *username == "" {
		return errors.New("-username is required")
	}

	ctx := context.Background()
	user, err := store.GetUserByUsername(ctx, database, *username)
	if err != nil {
		return err
	}
	if err := store.DeleteUser(ctx, database, user.ID); err != nil {
		return err
	}

	log.Info("user deleted", zap.String("user", user.Username), zap.Int64("id", user.ID))
	return nil
}
