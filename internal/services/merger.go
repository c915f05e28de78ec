package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/vvka-141/datmerge/internal/aggregate"
	"github.com/vvka-141/datmerge/internal/output"
	"github.com/vvka-141/datmerge/pkg/datmerge"
)

// datasetNamespace scopes dataset IDs, which are name-based UUIDs of the CSV bytes.
var datasetNamespace = uuid.MustParse("092bfdbb-79a1-4be9-b43f-7c7d327ba46e")

var errNoDataFiles = errors.New("no .dat files found")

// ParserFactory builds the parser for one run.
type ParserFactory func(config datmerge.MergeConfig) datmerge.RecordParser

// ExporterFactory builds the exporter for one run.
type ExporterFactory func(databaseURL, table string) datmerge.Exporter

// MergeService implements the Merger interface.
// Thread-Safety: safe for concurrent Merge() calls as long as the injected
// dependencies are; MergeService itself holds no per-run state.
type MergeService struct {
	scanner         datmerge.FileScanner
	parserFactory   ParserFactory
	writer          datmerge.FileWriter
	exporterFactory ExporterFactory
	logger          datmerge.Logger
}

// NewMergeService creates a new MergeService with all dependencies injected.
// Panics on nil dependencies: they are programmer errors and should fail at
// startup rather than in the middle of a run.
func NewMergeService(
	scanner datmerge.FileScanner,
	parserFactory ParserFactory,
	writer datmerge.FileWriter,
	exporterFactory ExporterFactory,
	logger datmerge.Logger,
) *MergeService {
	if scanner == nil {
		panic("scanner cannot be nil")
	}
	if parserFactory == nil {
		panic("parserFactory cannot be nil")
	}
	if writer == nil {
		panic("writer cannot be nil")
	}
	if exporterFactory == nil {
		panic("exporterFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &MergeService{
		scanner:         scanner,
		parserFactory:   parserFactory,
		writer:          writer,
		exporterFactory: exporterFactory,
		logger:          logger,
	}
}

// Merge runs one merge and reports what it did.
//
// Malformed lines are skipped and counted. Any other failure stops the run
// and is returned as one of the datmerge typed errors. On error the
// returned Summary holds whatever was completed before the failure.
func (s *MergeService) Merge(ctx context.Context, config datmerge.MergeConfig) (datmerge.Summary, error) {
	if err := config.Validate(); err != nil {
		return datmerge.Summary{}, err
	}

	summary := datmerge.Summary{
		InputDir:   config.InputDir,
		OutputPath: config.OutputPath,
	}

	if err := checkContext(ctx); err != nil {
		return summary, err
	}

	s.logger.Verbose("Scanning %s", config.InputDir)
	scan, err := s.scanner.ScanDirectory(config.InputDir)
	if err != nil {
		return summary, err
	}
	if len(scan.Files) == 0 {
		if config.RequireInput {
			return summary, &datmerge.InputError{Path: config.InputDir, Err: errNoDataFiles}
		}
		s.logger.Warn("No .dat files found in %s", config.InputDir)
	}

	set, err := s.parseAll(ctx, config, scan.Files, &summary)
	if err != nil {
		return summary, err
	}
	summary.Duplicates = set.Duplicates
	summary.Stats = aggregate.ComputeStats(set)

	if err := checkContext(ctx); err != nil {
		return summary, err
	}

	data, err := output.EncodeCSV(set)
	if err != nil {
		return summary, &datmerge.WriteError{Path: config.OutputPath, Err: err}
	}
	if err := s.writer.WriteFile(config.OutputPath, data); err != nil {
		return summary, err
	}
	summary.DatasetID = DatasetID(data)
	s.logger.Verbose("Wrote %d identities to %s", set.Len(), config.OutputPath)

	if config.DatabaseURL != "" {
		if err := checkContext(ctx); err != nil {
			return summary, err
		}
		s.logger.Verbose("Exporting to table %s", config.Table)
		if err := s.exporterFactory(config.DatabaseURL, config.Table).Export(ctx, set); err != nil {
			return summary, err
		}
		summary.Exported = true
	}

	if config.ReportPath != "" {
		if err := s.writeReport(config.ReportPath, summary); err != nil {
			return summary, err
		}
		s.logger.Verbose("Wrote report to %s", config.ReportPath)
	}

	return summary, nil
}

// parseAll parses every file in order and aggregates the records.
func (s *MergeService) parseAll(
	ctx context.Context,
	config datmerge.MergeConfig,
	files []datmerge.SourceFile,
	summary *datmerge.Summary,
) (datmerge.RecordSet, error) {
	parser := s.parserFactory(config)
	agg := aggregate.NewAggregator()

	var header []string
	var headerSource string

	for _, file := range files {
		if err := checkContext(ctx); err != nil {
			return datmerge.RecordSet{}, err
		}

		s.logger.Verbose("Parsing %s (%d bytes)", file.Name, file.SizeBytes)
		result := parser.Parse(file)

		for _, issue := range result.Issues {
			s.logger.Warn("Skipping %s:%d: %s", issue.File, issue.Line, issue.Reason)
		}

		if config.HasHeader && result.Header != nil {
			switch {
			case header == nil:
				header, headerSource = result.Header, file.Name
			case !slices.Equal(header, result.Header):
				s.logger.Warn("Header of %s differs from %s, keeping the header of %s", file.Name, headerSource, headerSource)
			}
		}

		agg.Add(result.Records...)

		summary.Files = append(summary.Files, datmerge.FileReport{
			Name:        file.Name,
			Checksum:    file.Checksum,
			ChecksumRaw: file.ChecksumRaw,
			Lines:       result.Lines,
			Records:     len(result.Records),
			Skipped:     len(result.Issues),
		})
		summary.LinesRead += result.Lines
		summary.RecordsParsed += len(result.Records)
		summary.SkippedLines += len(result.Issues)
		summary.Issues = append(summary.Issues, result.Issues...)
	}

	return agg.Result(), nil
}

func (s *MergeService) writeReport(path string, summary datmerge.Summary) error {
	data, err := output.EncodeReport(summary)
	if err != nil {
		return &datmerge.WriteError{Path: path, Err: err}
	}
	return s.writer.WriteFile(path, data)
}

// DatasetID returns the identifier of a CSV result. Identical bytes yield
// identical IDs, so repeated runs over unchanged input share one ID.
func DatasetID(csv []byte) string {
	return uuid.NewSHA1(datasetNamespace, csv).String()
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("merge cancelled: %w", err)
	}
	return nil
}

// Verify MergeService implements the interface at compile time
var _ datmerge.Merger = (*MergeService)(nil)
