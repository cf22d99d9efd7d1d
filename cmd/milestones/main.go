package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tgienger/milestones/internal/config"
	"github.com/tgienger/milestones/internal/db"
	"github.com/tgienger/milestones/internal/logger"
	"github.com/tgienger/milestones/internal/store"
	"github.com/tgienger/milestones/internal/ui"
	"github.com/tgienger/milestones/internal/ui/views"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootFlags holds flags shared by every command
type rootFlags struct {
	dataDir string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "milestones",
		Short:         "Track project milestones on a timeline or a status board",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(flags)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "Directory holding the database and log (overrides MILESTONES_DATA_DIR)")

	root.AddCommand(
		newVersionCmd(),
		newExportCmd(&flags),
		newSummaryCmd(&flags),
	)
	return root
}

func versionString() string {
	return fmt.Sprintf("milestones %s (commit: %s, built: %s)", version, commit, date)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

// loadConfig reads the environment and applies flag overrides
func loadConfig(flags rootFlags) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if flags.dataDir != "" {
		cfg.DataDir = flags.dataDir
	}
	return cfg, nil
}

// session bundles everything a command needs to touch the stored state
type session struct {
	cfg   config.Config
	log   *zap.Logger
	db    *db.DB
	store *store.Store
}

func openSession(flags rootFlags) (*session, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.DataDir, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	st, err := store.New(database, store.WithLogger(log))
	if err != nil {
		database.Close()
		_ = log.Sync()
		return nil, fmt.Errorf("loading state: %w", err)
	}

	return &session{cfg: cfg, log: log, db: database, store: st}, nil
}

func (s *session) Close() error {
	_ = s.log.Sync()
	return s.db.Close()
}

func runTUI(flags rootFlags) error {
	sess, err := openSession(flags)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.log.Info("starting", zap.String("version", version), zap.String("data_dir", sess.cfg.DataDir))

	// Create and run the application
	app := ui.NewApp(sess.store, sess.db, sess.log, views.Mode(sess.cfg.View))
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	if err := sess.store.SaveErr(); err != nil {
		return errors.New("last change was not saved: " + err.Error())
	}
	return nil
}
