package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vvka-141/datmerge/internal/checksum"
	"github.com/vvka-141/datmerge/internal/config"
	"github.com/vvka-141/datmerge/internal/db"
	"github.com/vvka-141/datmerge/internal/export"
	"github.com/vvka-141/datmerge/internal/files/scanner"
	"github.com/vvka-141/datmerge/internal/logging"
	"github.com/vvka-141/datmerge/internal/output"
	"github.com/vvka-141/datmerge/internal/records"
	"github.com/vvka-141/datmerge/internal/services"
	"github.com/vvka-141/datmerge/internal/tui"
	"github.com/vvka-141/datmerge/pkg/datmerge"
)

const (
	envDatabaseURL = "DATABASE_URL"
	envOutput      = "DATMERGE_OUTPUT"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge the .dat files of a directory into one CSV",
	Long: `Merge reads every .dat file of the input directory and writes one row per
identity to the output CSV.

The merge command:
1. Enumerates .dat files (non-recursive, sorted by name)
2. Parses each line into an identity key and salary components
3. Skips malformed lines with a warning and counts them
4. Collapses identical records and sums the rest per identity
5. Writes identity_key,total_salary atomically
6. Optionally publishes the result to PostgreSQL and writes a YAML report

Configuration precedence:
  flag > environment ($DATABASE_URL, $DATMERGE_OUTPUT) > datmerge.yaml > defaults
  datmerge.yaml is read from the input directory unless --config is given.

Examples:
  # Basic merge
  datmerge merge -i ./data

  # Tab separated files with a header row
  datmerge merge -i ./data --delimiter tab --header

  # Key in the second column, salary in the fourth and fifth
  datmerge merge -i ./data --key-column 1 --salary-columns 3,4

  # Publish the result and keep a run report
  datmerge merge -i ./data --database-url postgresql://localhost/payroll \
    --report result/report.yaml`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

type mergeFlagValues struct {
	inputDir      string
	output        string
	delimiter     string
	header        bool
	keyColumn     int
	salaryColumns []int
	requireInput  bool
	report        string
	databaseURL   string
	table         string
	timeout       time.Duration
	configPath    string
}

var mergeFlags mergeFlagValues

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVarP(&mergeFlags.inputDir, "input-dir", "i", "",
		"Directory holding the .dat files (required)")
	mergeCmd.Flags().StringVarP(&mergeFlags.output, "output", "o", datmerge.DefaultOutputPath,
		"Destination CSV file, parents are created as needed\n"+
			"Precedence: --output > $DATMERGE_OUTPUT > datmerge.yaml")

	mergeCmd.Flags().StringVar(&mergeFlags.delimiter, "delimiter", string(datmerge.DefaultDelimiter),
		"Field delimiter: a single character or comma, tab, pipe, semicolon, space")
	mergeCmd.Flags().BoolVar(&mergeFlags.header, "header", false,
		"Treat the first non-blank line of every file as a header row")
	mergeCmd.Flags().IntVar(&mergeFlags.keyColumn, "key-column", 0,
		"Zero-based column holding the identity key")
	mergeCmd.Flags().IntSliceVar(&mergeFlags.salaryColumns, "salary-columns", nil,
		"Zero-based columns holding salary components (default: every column except the key)\n"+
			"Example: --salary-columns 1,2")
	mergeCmd.Flags().BoolVar(&mergeFlags.requireInput, "require-input", false,
		"Fail when the input directory holds no .dat files")

	mergeCmd.Flags().StringVar(&mergeFlags.report, "report", "",
		"Write a YAML run report to this path")
	mergeCmd.Flags().StringVar(&mergeFlags.databaseURL, "database-url", "",
		"PostgreSQL connection string; when set the result replaces the rows of --table\n"+
			"Alternative: Use DATABASE_URL environment variable")
	mergeCmd.Flags().StringVar(&mergeFlags.table, "table", datmerge.DefaultTable,
		"PostgreSQL table receiving the result")

	mergeCmd.Flags().DurationVar(&mergeFlags.timeout, "timeout", datmerge.DefaultTimeout,
		"Upper bound for the whole run, including the export\n"+
			"Examples: 30s, 5m")
	mergeCmd.Flags().StringVar(&mergeFlags.configPath, "config", "",
		"Path to a datmerge.yaml file (default: <input-dir>/datmerge.yaml)")

	_ = mergeCmd.MarkFlagRequired("input-dir")
}

// buildMergeConfig resolves flags, environment and datmerge.yaml into a
// MergeConfig and the run timeout.
func buildMergeConfig(cmd *cobra.Command, verbose bool) (datmerge.MergeConfig, time.Duration, error) {
	_ = godotenv.Load()

	projectCfg, err := loadProjectConfig(mergeFlags.configPath, mergeFlags.inputDir)
	if err != nil {
		return datmerge.MergeConfig{}, 0, err
	}
	if projectCfg == nil {
		projectCfg = &config.ProjectConfig{}
	}

	changed := cmd.Flags().Changed

	delimiter := mergeFlags.delimiter
	if !changed("delimiter") && projectCfg.Delimiter != "" {
		delimiter = projectCfg.Delimiter
	}
	delim, err := config.ParseDelimiter(delimiter)
	if err != nil {
		return datmerge.MergeConfig{}, 0, err
	}

	timeout := mergeFlags.timeout
	if !changed("timeout") && projectCfg.Timeout != "" {
		parsed, parseErr := time.ParseDuration(projectCfg.Timeout)
		if parseErr != nil {
			return datmerge.MergeConfig{}, 0, fmt.Errorf("invalid timeout in %s: %v: %w", config.ConfigFileName, parseErr, datmerge.ErrInvalidConfig)
		}
		timeout = parsed
	}
	if timeout <= 0 {
		return datmerge.MergeConfig{}, 0, fmt.Errorf("timeout must be positive: %w", datmerge.ErrInvalidConfig)
	}

	cfg := datmerge.MergeConfig{
		InputDir:      mergeFlags.inputDir,
		OutputPath:    resolveString(changed("output"), mergeFlags.output, os.Getenv(envOutput), projectCfg.Output),
		Delimiter:     delim,
		HasHeader:     mergeFlags.header || (!changed("header") && projectCfg.HasHeader),
		KeyColumn:     mergeFlags.keyColumn,
		SalaryColumns: mergeFlags.salaryColumns,
		RequireInput:  mergeFlags.requireInput || (!changed("require-input") && projectCfg.RequireInput),
		ReportPath:    resolveString(changed("report"), mergeFlags.report, "", projectCfg.Report),
		DatabaseURL:   resolveString(changed("database-url"), mergeFlags.databaseURL, os.Getenv(envDatabaseURL), projectCfg.DatabaseURL),
		Table:         resolveString(changed("table"), mergeFlags.table, "", projectCfg.Table),
		Verbose:       verbose,
	}
	if !changed("key-column") && projectCfg.KeyColumn != 0 {
		cfg.KeyColumn = projectCfg.KeyColumn
	}
	if !changed("salary-columns") && len(projectCfg.SalaryColumns) > 0 {
		cfg.SalaryColumns = projectCfg.SalaryColumns
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Merge configuration resolved:\n")
		fmt.Fprintf(os.Stderr, "  Input: %s\n", cfg.InputDir)
		fmt.Fprintf(os.Stderr, "  Output: %s\n", cfg.OutputPath)
		fmt.Fprintf(os.Stderr, "  Delimiter: %q\n", cfg.Delimiter)
		fmt.Fprintf(os.Stderr, "  Header: %t\n", cfg.HasHeader)
		fmt.Fprintf(os.Stderr, "  Key column: %d\n", cfg.KeyColumn)
		fmt.Fprintf(os.Stderr, "  Salary columns: %v\n", cfg.SalaryColumns)
		if cfg.DatabaseURL != "" {
			fmt.Fprintf(os.Stderr, "  Database: %s (table %s)\n", db.RedactURL(cfg.DatabaseURL), cfg.Table)
		}
		fmt.Fprintf(os.Stderr, "  Timeout: %s\n", timeout)
	}

	return cfg, timeout, nil
}

// loadProjectConfig reads an explicit config file, or datmerge.yaml from
// the input directory. Only the implicit file may be absent.
func loadProjectConfig(explicitPath, inputDir string) (*config.ProjectConfig, error) {
	if explicitPath != "" {
		cfg, err := config.LoadFile(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %v: %w", explicitPath, err, datmerge.ErrInvalidConfig)
		}
		return cfg, nil
	}

	cfg, err := config.Load(inputDir)
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return cfg, nil
}

// resolveString applies flag > environment > file > flag default.
func resolveString(flagChanged bool, flagValue, envValue, fileValue string) string {
	switch {
	case flagChanged:
		return flagValue
	case envValue != "":
		return envValue
	case fileValue != "":
		return fileValue
	default:
		return flagValue
	}
}

func newMergeService(logger datmerge.Logger) *services.MergeService {
	return services.NewMergeService(
		scanner.NewScanner(checksum.New()),
		func(cfg datmerge.MergeConfig) datmerge.RecordParser {
			return records.NewParser(records.OptionsFromConfig(cfg))
		},
		output.NewAtomicWriter(),
		func(databaseURL, table string) datmerge.Exporter {
			return export.NewPostgresSink(db.NewConnector(logger), databaseURL, table, logger)
		},
		logger,
	)
}

func runMerge(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, timeout, err := buildMergeConfig(cmd, verbose)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	merger := newMergeService(logger)

	// Setup context with timeout and signal handling for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling merge...")
			cancel()
		case <-ctx.Done():
		}
	}()

	summary, err := merger.Merge(ctx, cfg)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), tui.RenderSummary(summary, tui.DetectMode()))
	return nil
}
