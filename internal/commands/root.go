package commands

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/balkashynov/classtimer/internal/config"
	"github.com/balkashynov/classtimer/internal/db"
	"github.com/balkashynov/classtimer/internal/settings"
	"github.com/balkashynov/classtimer/internal/timer"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	dbPath     string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "classtimer",
	Short: "A countdown timer for class periods",
	Long: `classtimer counts down a schedule of class periods from the terminal.
Each period chains into the next when it runs out, and the session survives restarts.`,
	SilenceUsage: true,
}

// app holds everything a command needs once storage is open
type app struct {
	cfg      config.Config
	kv       *db.KVStore
	settings *settings.Store
	logFile  *os.File
}

// openApp loads the config, opens the database and loads the settings
func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}

	logFile, err := redirectLog(cfg.LogFile)
	if err != nil {
		return nil, err
	}

	if err := db.Initialize(cfg.DatabasePath); err != nil {
		logFile.Close()
		return nil, err
	}

	kv := db.NewKVStore(db.DB)
	store := settings.NewStore(kv, log.Default())
	store.Load()

	return &app{cfg: cfg, kv: kv, settings: store, logFile: logFile}, nil
}

func (a *app) close() {
	if err := db.Close(); err != nil {
		log.Printf("close database: %v", err)
	}
	a.logFile.Close()
}

// engine builds a timer engine over the app's storage and restores the saved session
func (a *app) engine(presenter timer.Presenter, clock timer.Clock) *timer.Engine {
	engine := timer.New(a.settings, a.kv, presenter, timer.Config{
		FrameInterval: a.cfg.FrameInterval,
		ChainDelay:    a.cfg.ChainDelay,
		CompleteDelay: a.cfg.CompleteDelay,
		Clock:         clock,
		Logger:        log.Default(),
	})
	engine.Restore()
	return engine
}

// redirectLog sends the standard logger to path so it never draws over the terminal UI
func redirectLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := tea.LogToFile(path, "classtimer")
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logFile, nil
}

// withApp wraps a command function to open storage first
func withApp(fn func(*cobra.Command, []string, *app)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer a.close()
		fn(cmd, args, a)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("classtimer %s (commit %s, built %s)\n", version, commit, date)
	},
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.AddCommand(versionCmd)
}
