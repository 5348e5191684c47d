// Package cli implements the hogql command-line interface: resolve a
// query and print its typed shape, check a query for diagnostics
// without failing the process, and an interactive REPL - grounded on
// the teacher's internal/cli/root.go command wiring (cobra root command,
// persistent config-loading PersistentPreRunE, --config/--verbose
// global flags) generalised from a dbt-style project runner to a
// stateless query resolver.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lakequery/hogql/internal/config"
	"github.com/lakequery/hogql/pkg/catalog"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags, matching the teacher's
// cmd/leapsql version-stamping convention.
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
)

// NewRootCmd builds the hogql root command and its subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "hogql",
		Short:   "hogql - name and type resolver for the HogQL analytics query dialect",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			dir := cfgFile
			if dir == "" {
				if wd, err := os.Getwd(); err == nil {
					dir = wd
					if projectRoot := config.FindProjectRoot(wd); projectRoot != "" {
						dir = projectRoot
					}
				}
			} else {
				dir = configDirOf(cfgFile)
			}

			loaded, err := config.Load(dir, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			cfg = loaded

			level := slog.LevelInfo
			if verbose || cfg.Verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to hogql.yaml (default: search upward from cwd)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().String("team-id", "", "tenant scope for macro expansion")
	root.PersistentFlags().String("dialect", "", "dialect name stored in the loaded config: strict, clickhouse, or hogqlx (resolve always uses strict, check lenient, repl strict unless --lenient)")
	root.PersistentFlags().Int("max-view-depth", 0, "maximum nested saved-view expansion depth")

	root.AddCommand(newResolveCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newCatalogCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the hogql version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "hogql", Version)
			return err
		},
	}
}

func configDirOf(cfgFilePath string) string {
	if cfgFilePath == "" {
		return "."
	}
	return config.FindProjectRoot(cfgFilePath)
}

// currentLogger returns the logger prepared by PersistentPreRunE, or a
// default one when commands are invoked in tests without going through
// Execute().
func currentLogger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// currentConfig returns the loaded config, or hard defaults if
// PersistentPreRunE never ran (e.g. unit tests constructing a
// subcommand directly).
func currentConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	return &config.Config{TeamID: "default", MaxViewDepth: 3, InCohortVia: config.CohortViaSubquery, Dialect: config.DialectStrict}
}

// bundledCatalog is the schema every command uses absent a configured
// catalog DSN: spec.md §8's events/s3_table/view-v fixture.
func bundledCatalog() catalog.Database {
	return catalog.SampleSchema()
}
