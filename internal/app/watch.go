package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/exhaust/internal/config"
	"github.com/blackwell-systems/exhaust/internal/ingest"
	"github.com/blackwell-systems/exhaust/internal/store"
)

var (
	watchDaemon   bool
	watchStop     bool
	watchQuiet    bool
	watchPipeline bool
	watchInterval string
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"ingest"},
	Short:   "Tail session logs and ingest events",
	Long: `Watch the sessions directory for file changes and ingest every new
log line into the event store. On startup, existing files are scanned for
lines within the trailing catch-up window; afterwards only appended lines
are read. Ingestion is deduplicated on (session, timestamp), so repeated
change notifications are harmless.

With --pipeline, the downstream batch stages (classify, synthesize, daily)
also run periodically while watching.

Examples:
  exhaust watch                        # run in foreground (ctrl-c to stop)
  exhaust watch --daemon               # run in background, write PID file
  exhaust watch --pipeline             # also run rollups every 10 minutes
  exhaust watch --stop                 # stop the background daemon`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress status output")
	watchCmd.Flags().BoolVar(&watchPipeline, "pipeline", false, "Also run classify/synthesize/daily on an interval")
	watchCmd.Flags().StringVar(&watchInterval, "interval", "10m", "Pipeline interval as duration string (e.g. 5m, 1h)")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon()
	}

	interval, err := time.ParseDuration(watchInterval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", watchInterval, err)
	}
	if interval < 30*time.Second {
		return fmt.Errorf("interval must be at least 30s, got %s", interval)
	}

	cfg, db, err := loadConfigAndStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if watchDaemon {
		return runDaemon(cfg, db, interval)
	}
	return runForeground(cfg, db, interval)
}

// runForeground runs the watcher in the foreground until interrupted.
func runForeground(cfg *config.Config, db *store.DB, interval time.Duration) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		cancel()
	}()

	logf := func(format string, args ...any) {
		if !watchQuiet {
			fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
		}
	}

	err := runWatchLoop(ctx, cfg, db, interval, logf)
	if err == context.Canceled {
		if !watchQuiet {
			fmt.Println("\nStopped.")
		}
		return nil
	}
	return err
}

// runDaemon sets up PID and log files, then runs the watcher. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(cfg *config.Config, db *store.DB, interval time.Duration) error {
	// Ensure config directory exists.
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	// Check for existing daemon.
	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file, remove it.
		_ = os.Remove(pidFilePath())
	}

	// Write PID file.
	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	// Open log file for output.
	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		cancel()
	}()

	logf := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		timestamp := time.Now().Format("2006-01-02 15:04:05")
		_, _ = fmt.Fprintf(logFile, "[%s] %s\n", timestamp, msg)
	}
	logf("exhaust watch daemon started (PID %d)", pid)

	err = runWatchLoop(ctx, cfg, db, interval, logf)
	if err == context.Canceled {
		logf("daemon stopped")
		return nil
	}
	return err
}

// runWatchLoop runs the ingest watcher, and with --pipeline also a periodic
// scheduler for the downstream batch stages, as one cancellable group.
func runWatchLoop(ctx context.Context, cfg *config.Config, db *store.DB, interval time.Duration, logf func(string, ...any)) error {
	w := ingest.NewWatcher(db, ingest.Config{
		SessionsDir:    cfg.SessionsDir,
		CatchupWindow:  cfg.CatchupWindow(),
		OperatorID:     cfg.OperatorID,
		MainSessionKey: cfg.MainSessionKey,
		Logf:           logf,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(ctx)
	})

	if watchPipeline {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					if err := runPipelineOnce(cfg, db, logf); err != nil {
						// Batch stages are resumable; the next tick
						// retries from where the store left off.
						logf("pipeline run failed: %v", err)
					}
				}
			}
		})
	}

	return g.Wait()
}
