package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	db "github.com/TechXTT/LiteRM"
	"github.com/TechXTT/LiteRM/internal/logging"
	"github.com/TechXTT/LiteRM/pkg/config"
)

func version() string {
	return "v0.3.0"
}

// options are the flags shared by every command that touches a database.
type options struct {
	envFile   string
	database  string
	logLevel  string
	logFormat string
}

// open loads the configuration, applies flag overrides and opens the
// database. A database that cannot be opened is an error here.
func (o *options) open() (*db.DB, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}
	if o.database != "" {
		cfg.Database = o.database
	}
	if o.logLevel != "" {
		if cfg.LogLevel, err = logging.ParseLevel(o.logLevel); err != nil {
			return nil, err
		}
	}
	if o.logFormat != "" {
		if cfg.LogFormat, err = logging.ParseFormat(o.logFormat); err != nil {
			return nil, err
		}
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	logging.SetDefault(logger)
	conn := db.Open(cfg.Database, db.WithLogger(logger))
	if err := conn.Err(); err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Database, err)
	}
	return conn, nil
}

// NewVersionCmd builds the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version())
		},
	}
}

// NewRootCmd builds the top-level `literm` command.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "literm",
		Short:         "LiteRM: record mapping over embedded SQLite",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env", ".env", "Environment file")
	flags.StringVar(&opts.database, "db", "", "Database file (default $"+config.EnvDatabase+" or "+config.DefaultDatabase+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: text, json")

	root.AddCommand(NewQueryCmd(opts))
	root.AddCommand(NewExecCmd(opts))
	root.AddCommand(NewTablesCmd(opts))
	root.AddCommand(NewGenCmd())
	root.AddCommand(NewVersionCmd())
	return root
}
