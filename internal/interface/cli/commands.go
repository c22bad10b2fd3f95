package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/staffbook/staffbook/internal/application/query"
	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/internal/infrastructure/persistence/postgres"
	"github.com/staffbook/staffbook/pkg/logger"
)

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <first-last-pay>",
		Short: "Parse a hyphenated staff record and print it",
		Long: `Parses a "first-last-pay" record into an employee and prints its
full name, email and pay. Digit groups in pay may use underscores.

Example:
  staffbook parse Johnny-Smith-110_000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := employee.FromString(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.String())
			return nil
		},
	}
}

func newWorkdayCommand() *cobra.Command {
	var next bool

	cmd := &cobra.Command{
		Use:   "workday <YYYY-MM-DD>",
		Short: "Print whether a date is a workday",
		Long: `Prints true for Monday through Friday and false for weekends.

Example:
  staffbook workday 2016-07-11
  staffbook workday --next 2016-07-09`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := query.Workday(query.WorkdayQuery{Date: args[0]})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.IsWorkday)
			if next {
				fmt.Fprintln(out, res.NextWorkday)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&next, "next", false, "also print the next workday after the date")
	return cmd
}

func newMigrateCommand(s *session) *cobra.Command {
	var (
		status   bool
		rollback bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply PostgreSQL schema migrations",
		Long: `Applies pending migrations to the database named by DATABASE_URL.
Use --status to list migrations or --rollback to revert the latest one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if status && rollback {
				return errors.New("--status and --rollback are mutually exclusive")
			}
			if s.cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is required for migrate")
			}

			ctx := cmd.Context()
			conn, err := connectDatabase(ctx, s.cfg, s.log)
			if err != nil {
				return err
			}
			defer conn.Close()

			migrator := postgres.NewMigrator(conn)
			out := cmd.OutOrStdout()

			switch {
			case status:
				migrations, err := migrator.Status(ctx)
				if err != nil {
					return err
				}
				st := newStyles(out)
				for _, m := range migrations {
					state := st.Muted.Render("pending")
					if m.Applied {
						state = "applied " + m.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(out, "%03d %-24s %s\n", m.Version, m.Name, state)
				}
			case rollback:
				if err := migrator.Rollback(ctx); err != nil {
					return err
				}
				s.log.Info("rolled back latest migration")
				fmt.Fprintln(out, "rolled back latest migration")
			default:
				ran, err := migrator.Migrate(ctx)
				if err != nil {
					return err
				}
				s.log.Info("migrations completed", logger.Int("applied", ran))
				fmt.Fprintf(out, "applied %d migration(s)\n", ran)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "list migrations and their state")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "revert the latest applied migration")
	return cmd
}
