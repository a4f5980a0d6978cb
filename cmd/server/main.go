package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DoyleJ11/team-builder/internal/config"
	"github.com/DoyleJ11/team-builder/internal/httpapi"
	"github.com/DoyleJ11/team-builder/internal/hub"
	"github.com/DoyleJ11/team-builder/internal/journal"
	"github.com/DoyleJ11/team-builder/internal/lobby"
	"github.com/DoyleJ11/team-builder/internal/logging"
	"github.com/DoyleJ11/team-builder/internal/metrics"
	"github.com/DoyleJ11/team-builder/internal/pubsub"
)

const shutdownTimeout = 10 * time.Second

var (
	envFile    string
	addr       string
	logLevel   string
	logDev     bool
	presetPath string
)

var rootCmd = &cobra.Command{
	Use:   "team-builder-server",
	Short: "Serve shared team builder rooms over HTTP and WebSocket",
	Long: `Runs the room server. Each room holds one roster; clients create a
room with POST /rooms and join it over /ws?code=<code>.

Settings come from the environment (optionally a .env file); flags win.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (env ADDR)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	rootCmd.Flags().BoolVar(&logDev, "log-dev", false, "human readable logs (env LOG_DEV)")
	rootCmd.Flags().StringVar(&presetPath, "preset", "", "YAML roster preset for new rooms (env ROSTER_PRESET)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = addr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-dev") {
		cfg.LogDev = logDev
	}
	if flags.Changed("preset") {
		roster, err := config.LoadRoster(presetPath)
		if err != nil {
			return err
		}
		cfg.PresetPath, cfg.Roster = presetPath, roster
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var j journal.Journal = journal.NewMemoryJournal()
	if cfg.DatabaseURL != "" {
		gj, err := journal.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		j = gj
		log.Info("journaling events to postgres")
	}
	defer j.Close()

	var pub pubsub.Publisher = pubsub.Noop{}
	if cfg.NATSURL != "" {
		np, err := pubsub.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return err
		}
		pub = np
		log.Info("publishing events to nats", zap.String("subject", cfg.NATSSubject+".<room>"))
	}
	defer pub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	h := hub.NewHub(ctx, lobby.Deps{
		Logger:    log,
		Journal:   j,
		Publisher: pub,
		Metrics:   m,
	})

	// Build the router *with* the hub injected
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:      h,
			NewState: cfg.Roster.NewState,
			Metrics:  m,
			Logger:   log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.Strings("positions", cfg.Roster.Positions))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}

	select {
	case h.Inbox() <- hub.ShutdownHub{}:
	case <-h.Done():
	}
	<-h.Done()
	return nil
}
