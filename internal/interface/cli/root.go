// Package cli implements the staffbook command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/staffbook/staffbook/config"
	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/pkg/logger"
	"github.com/staffbook/staffbook/pkg/timeutil"
)

// session holds what PersistentPreRunE prepares for subcommands.
type session struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
}

// init loads configuration, builds the logger and applies the
// process-wide settings: company timezone and shared raise rate.
func (s *session) init(cmd *cobra.Command) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}

	level := cfg.Observability.LogLevel
	if s.logLevel != "" {
		level = s.logLevel
	}
	s.log = logger.New(logger.Options{
		Output: cmd.ErrOrStderr(),
		Level:  logger.ParseLevel(level),
		Format: cfg.Observability.LogFormat,
	}).With(logger.String("app", cfg.App.Name))

	timeutil.SetLocation(cfg.App.Location)
	employee.SetSharedRaiseRate(cfg.App.SharedRaiseRate)

	s.cfg = cfg
	s.log.Debug("configuration loaded",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("timezone", cfg.App.Timezone),
		logger.RaiseRate(cfg.App.SharedRaiseRate),
		logger.Bool("postgres", cfg.Database.URL != ""),
		logger.Bool("redis", cfg.Redis.Enabled),
	)
	return nil
}

// NewRootCommand returns the staffbook command tree.
func NewRootCommand() *cobra.Command {
	s := &session{}

	root := &cobra.Command{
		Use:   "staffbook",
		Short: "Staff records: employees, developers, managers and their raises",
		Long: `staffbook keeps a small company's staff: derived emails and full names,
per-kind pay raises, hyphenated record import, renames and managers' rosters.

Staff are held in memory unless DATABASE_URL points at PostgreSQL.
Set REDIS_ENABLED to cache staff cards in Redis.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if s.log != nil {
				_ = s.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&s.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&s.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	root.AddCommand(
		newDemoCommand(s),
		newParseCommand(),
		newWorkdayCommand(),
		newMigrateCommand(s),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		st := newStyles(root.ErrOrStderr())
		fmt.Fprintln(root.ErrOrStderr(), st.Error.Render("error:"), err)
		return 1
	}
	return 0
}
