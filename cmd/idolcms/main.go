// Package main is the entry point for the idolcms server.
//
// idolcms is the content backend of the fan site. Every collection is stored
// as a JSON document in the data directory and exposed over a RESTful HTTP
// API. Configuration is read from CLI flags, a .env file in the data
// directory, and config.yaml (for rate limits, quotas and VAPID keys).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/lumina-fans/idolcms/internal/clock"
	"github.com/lumina-fans/idolcms/internal/config"
	"github.com/lumina-fans/idolcms/internal/ipgeo"
	"github.com/lumina-fans/idolcms/internal/notify"
	"github.com/lumina-fans/idolcms/internal/ratelimit"
	"github.com/lumina-fans/idolcms/internal/server"
	"github.com/lumina-fans/idolcms/internal/server/handlers"
	"github.com/lumina-fans/idolcms/internal/storage"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	o := &options{}
	err := newRootCmd(o, stop).ExecuteContext(ctx)
	o.close()
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "idolcms: %v\n", err)
		os.Exit(1)
	}
}

// options holds the command line flags, overridden by .env values for flags
// left unset.
type options struct {
	httpAddr string
	dataDir  string
	logLevel string
	logFile  string
	geoDB    string

	env    map[string]string
	logOut io.Closer
}

// dotEnvFlags maps flags to the .env keys that may set them.
var dotEnvFlags = map[string]string{
	"http":      "HTTP",
	"log-level": "LOG_LEVEL",
	"log-file":  "LOG_FILE",
	"geo-db":    "GEO_DB",
}

func newRootCmd(o *options, stop context.CancelFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "idolcms",
		Short:         "JSON document content backend for the fan site",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), o, stop)
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&o.httpAddr, "http", "localhost:8080", "Address to listen on (e.g., localhost:8080, :8080, 0.0.0.0:8080)")
	f.StringVar(&o.dataDir, "data-dir", "./data", "Data directory")
	f.StringVar(&o.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&o.logFile, "log-file", "", "Also write JSON logs to this file, rotated (optional)")
	f.StringVar(&o.geoDB, "geo-db", "", "Path to MaxMind MMDB file for IP geolocation (optional)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context(), o, stop)
			},
		},
		&cobra.Command{
			Use:   "check",
			Short: "Load and validate every collection",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return check(cmd.Context(), o)
			},
		},
		&cobra.Command{
			Use:   "schema [collection]",
			Short: "Print the JSON schema of one or every collection",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printSchema(cmd, o, args)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version and exit",
			Args:  cobra.NoArgs,
			// Needs neither the data directory nor logging.
			PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
			Run: func(cmd *cobra.Command, _ []string) {
				printVersion(cmd)
			},
		},
	)
	return root
}

// prepare applies .env overrides and installs the default logger.
func (o *options) prepare(cmd *cobra.Command) error {
	env, err := loadDotEnv(o.dataDir)
	if err != nil {
		return err
	}
	o.env = env
	flags := cmd.Flags()
	for name, key := range dotEnvFlags {
		if flags.Changed(name) {
			continue
		}
		if v := env[key]; v != "" {
			if err := flags.Set(name, v); err != nil {
				return fmt.Errorf("%s from .env: %w", key, err)
			}
		}
	}

	ll := &slog.LevelVar{}
	level, err := parseLevel(o.logLevel)
	if err != nil {
		return err
	}
	ll.Set(level)
	logger, closer, err := newLogger(ll, o.logFile)
	if err != nil {
		return err
	}
	o.logOut = closer
	slog.SetDefault(logger)
	return nil
}

func (o *options) close() {
	if o.logOut != nil {
		_ = o.logOut.Close()
	}
}

// lookupEnv prefers the process environment over the .env file.
func (o *options) lookupEnv(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := o.env[key]
	return v, ok
}

// loadConfig reads config.yaml and applies the environment overrides.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.dataDir)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(o.lookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context, o *options, stop context.CancelFunc) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.Open(o.dataDir, storage.Options{})
	if err != nil {
		return err
	}

	// Normalize addr: ":8080" becomes "localhost:8080"
	addr := o.httpAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	var locator storage.Locator
	if o.geoDB != "" {
		geo, err := ipgeo.Open(o.geoDB)
		if err != nil {
			return fmt.Errorf("failed to open geo database: %w", err)
		}
		defer func() { _ = geo.Close() }()
		locator = geo
		slog.InfoContext(ctx, "IP geolocation enabled", "db", o.geoDB)
	}

	notifier := notify.New(storage.NewPushService(store.PushSubscriptions), cfg.VAPID.Keys())
	defer notifier.Wait()
	if notifier.Enabled() {
		slog.InfoContext(ctx, "Web Push enabled", "subject", cfg.VAPID.Subject)
	}

	// Watch own executable for modifications (for development restarts)
	if err := watchExecutable(ctx, stop); err != nil {
		return fmt.Errorf("failed to watch executable: %w", err)
	}

	buildVersion, _, _, _ := getBuildInfo()
	svc := handlers.NewServices(store, cfg, notifier, locator, 0)
	tiers := cfg.RateLimits.Tiers()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(svc, handlers.NewConfig(cfg, buildVersion), ratelimit.NewLimiter(clock.Real{}), &tiers),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", addr, "data", o.dataDir, "version", buildVersion)
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.InfoContext(ctx, "Server stopped")
	}
	return nil
}

// check reads every document and validates every record in it.
func check(ctx context.Context, o *options) error {
	if _, err := o.loadConfig(); err != nil {
		return err
	}
	store, err := storage.Open(o.dataDir, storage.Options{})
	if err != nil {
		return err
	}
	var errs []error
	for _, c := range store.Collections() {
		n, err := c.Count()
		if err != nil {
			slog.ErrorContext(ctx, "Invalid collection", "name", c.Name(), "err", err)
			errs = append(errs, err)
			continue
		}
		slog.InfoContext(ctx, "Collection ok", "name", c.Name(), "count", n)
	}
	return errors.Join(errs...)
}

// printSchema writes the JSON schema of the named collection, or of all of
// them keyed by name.
func printSchema(cmd *cobra.Command, o *options, args []string) error {
	store, err := storage.Open(o.dataDir, storage.Options{})
	if err != nil {
		return err
	}
	var v any
	if len(args) == 1 {
		c, ok := store.Collection(args[0])
		if !ok {
			return fmt.Errorf("collection %q: %w", args[0], storage.ErrNotFound)
		}
		v = c.JSONSchema()
	} else {
		all := make(map[string]any)
		for _, c := range store.Collections() {
			all[c.Name()] = c.JSONSchema()
		}
		v = all
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printVersion(cmd *cobra.Command) {
	version, goVersion, revision, dirty := getBuildInfo()
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "idolcms %s\n", version)
	_, _ = fmt.Fprintf(w, "  Go version: %s\n", goVersion)
	_, _ = fmt.Fprintf(w, "  Revision:   %s\n", revision)
	if dirty {
		_, _ = fmt.Fprintf(w, "  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}

// loadDotEnv reads dataDir/.env. A missing file yields an empty map.
func loadDotEnv(dataDir string) (map[string]string, error) {
	env, err := godotenv.Read(filepath.Join(dataDir, ".env"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return env, nil
}

// watchExecutable stops the server when its own binary is replaced.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}
