package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/iliyamo/theatre-booking/cmd/boxoffice/output"
	"github.com/iliyamo/theatre-booking/cmd/boxoffice/tui"
	"github.com/iliyamo/theatre-booking/internal/app"
	"github.com/iliyamo/theatre-booking/internal/config"
)

var (
	// Global flags
	dbPath  string
	verbose bool

	logFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "boxoffice",
	Short: "Theatre box office",
	Long: `boxoffice sells theatre tickets and concessions from the terminal.

Run without a subcommand to open the interactive box office. The
subcommands cover the same ground for scripting: browsing shows,
booking seats, and the admin catalogue and reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(loadConfig())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), loadConfig(), app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()
		return tui.Run(a)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("boxoffice: %v", err)
		output.Error("%s", output.Describe(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file (overrides DB_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr instead of LOG_FILE")
}

func loadConfig() config.Config {
	cfg := config.Load()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg
}

// setupLogging sends the standard logger to LOG_FILE so diagnostics
// never land on the TUI screen.
func setupLogging(cfg config.Config) error {
	if verbose || cfg.LogFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return fmt.Errorf("log dir: %w", err)
	}
	f, err := tea.LogToFile(cfg.LogFile, "boxoffice")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logFile = f
	return nil
}

// openApp builds the app for a one-shot command. Unlike the TUI these
// commands cannot do anything without storage.
func openApp(cmd *cobra.Command) (*app.App, error) {
	a, err := app.New(cmd.Context(), loadConfig(), app.Options{})
	if err != nil {
		return nil, err
	}
	if err := a.RequireStorage(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}
