package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tordrt/sqldia"
	"github.com/tordrt/sqldia/internal/config"
	"github.com/tordrt/sqldia/internal/formatter"
	"github.com/tordrt/sqldia/internal/schema"
)

// version is set at build time
var version = "dev"

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqldia [schema.sql ...]",
		Short: "Draw SQL table definitions as a Dia diagram",
		Long: `sqldia reads CREATE TABLE statements from files or stdin, or the tables of a
PostgreSQL, MySQL or SQLite database, and writes a Dia database diagram with
one table object per table.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfgFile, args)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ./sqldia.yaml)")
	flags.StringP("output", "o", "", "Output file (default: stdout)")
	flags.StringP("output-dir", "d", "", "Output directory for one file per table")
	flags.StringP("format", "f", config.DefaultFormat, "Output format: "+strings.Join(formatter.Formats, ", "))
	flags.Bool("strict", false, "Fail when a definition cannot be parsed")
	flags.StringSlice("skip-directives", nil, "Extra definition names to ignore like KEY (e.g. unique,index)")
	flags.String("db-url", "", "PostgreSQL connection string")
	flags.String("mysql-url", "", "MySQL connection string")
	flags.String("sqlite", "", "SQLite database file path")
	flags.StringSliceP("tables", "t", nil, "Specific tables (comma-separated, optional)")
	flags.StringSlice("exclude", nil, "Tables to leave out (comma-separated)")
	flags.StringP("schema", "s", "", "Database schema name (default: public for PostgreSQL)")
	flags.BoolP("watch", "w", false, "Re-render when an input file changes")
	flags.BoolP("verbose", "v", false, "Log parse details")
	flags.String("log-format", config.DefaultLogFormat, "Log format: text or json")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return formatter.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sqldia %s\n", version)
		},
	}
}

func run(cmd *cobra.Command, cfgFile string, args []string) error {
	cfg, configFileUsed, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger := config.NewLogger(cmd.ErrOrStderr(), cfg)
	ctx := config.WithLogger(cmd.Context(), logger)
	if configFileUsed != "" {
		logger.Debug("using config file", slog.String("path", configFileUsed))
	}

	render := func() error {
		s, err := loadSchema(ctx, cfg, args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		return writeSchema(cfg, s, cmd.OutOrStdout())
	}

	if !cfg.Watch {
		return render()
	}

	if err := checkWatch(cfg, args); err != nil {
		return err
	}
	if err := render(); err != nil {
		return fmt.Errorf("initial render failed: %w", err)
	}
	return watchInputs(ctx, args, render)
}

// checkWatch rejects watch runs that have nothing to watch or nowhere to write
func checkWatch(cfg *config.Config, files []string) error {
	if len(files) == 0 || cfg.DatabaseURL() != "" {
		return fmt.Errorf("--watch requires input files")
	}
	if cfg.Output == "" && cfg.OutputDir == "" {
		return fmt.Errorf("--watch requires --output or --output-dir")
	}
	return nil
}

// loadSchema reads the schema from the configured database, the given files or stdin
func loadSchema(ctx context.Context, cfg *config.Config, files []string, stdin io.Reader) (*schema.Schema, error) {
	opts := &sqldia.Options{
		Tables:         cfg.Tables,
		ExcludeTables:  cfg.Exclude,
		SchemaName:     cfg.Schema,
		SkipDirectives: cfg.SkipDirectives,
		Strict:         cfg.Strict,
		Logger:         config.GetLogger(ctx),
	}

	if databaseURL := cfg.DatabaseURL(); databaseURL != "" {
		if len(files) > 0 {
			return nil, fmt.Errorf("input files cannot be combined with --db-url, --mysql-url, or --sqlite")
		}
		return sqldia.ExtractSchema(ctx, databaseURL, opts)
	}

	text, err := readInput(ctx, files, stdin)
	if err != nil {
		return nil, err
	}

	s, _, err := sqldia.ParseSchema(text, opts)
	return s, err
}

// readInput returns the files joined by newlines, or all of stdin when no file is given
func readInput(ctx context.Context, files []string, stdin io.Reader) (string, error) {
	if len(files) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	logger := config.GetLogger(ctx)
	parts := make([]string, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		logger.Debug("read input file", slog.String("path", path), slog.Int("bytes", len(data)))
		parts = append(parts, string(data))
	}
	return strings.Join(parts, "\n"), nil
}

func writeSchema(cfg *config.Config, s *schema.Schema, stdout io.Writer) (err error) {
	outOpts := &sqldia.OutputOptions{
		Writer:    stdout,
		OutputDir: cfg.OutputDir,
		Format:    cfg.Format,
	}

	if cfg.Output != "" {
		f, createErr := os.Create(cfg.Output)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", closeErr)
			}
		}()
		outOpts.Writer = f
	}

	if err := sqldia.FormatSchema(s, outOpts); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
