package services

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/datmerge/internal/checksum"
	"github.com/vvka-141/datmerge/internal/files/filesystem"
	"github.com/vvka-141/datmerge/internal/files/scanner"
	"github.com/vvka-141/datmerge/internal/logging"
	"github.com/vvka-141/datmerge/internal/records"
	"github.com/vvka-141/datmerge/pkg/datmerge"
	"gopkg.in/yaml.v3"
)

const outputPath = "/out/combined_data.csv"

func parserFactory(config datmerge.MergeConfig) datmerge.RecordParser {
	return records.NewParser(records.OptionsFromConfig(config))
}

type harness struct {
	fs       *filesystem.MemoryFileSystem
	writer   *memoryWriter
	exporter *mockExporter
	logger   *recordingLogger
	service  *MergeService
}

func newHarness() *harness {
	h := &harness{
		fs:       filesystem.NewMemoryFileSystem("/data"),
		writer:   newMemoryWriter(),
		exporter: &mockExporter{},
		logger:   &recordingLogger{},
	}
	h.service = NewMergeService(
		scanner.NewScannerWithFS(checksum.New(), h.fs),
		parserFactory,
		h.writer,
		h.exporter.factory,
		h.logger,
	)
	return h
}

func baseConfig() datmerge.MergeConfig {
	return datmerge.MergeConfig{
		InputDir:   "/data",
		OutputPath: outputPath,
		Delimiter:  ',',
	}
}

func (h *harness) merge(t *testing.T, config datmerge.MergeConfig) datmerge.Summary {
	t.Helper()
	summary, err := h.service.Merge(context.Background(), config)
	require.NoError(t, err)
	return summary
}

func (h *harness) output() string {
	return string(h.writer.files[outputPath])
}

func TestNewMergeService_NilDependencies(t *testing.T) {
	sc := &mockFileScanner{}
	w := newMemoryWriter()
	exp := &mockExporter{}
	log := logging.NewNullLogger()

	tests := []struct {
		name string
		fn   func()
	}{
		{"nil scanner", func() { NewMergeService(nil, parserFactory, w, exp.factory, log) }},
		{"nil parser factory", func() { NewMergeService(sc, nil, w, exp.factory, log) }},
		{"nil writer", func() { NewMergeService(sc, parserFactory, nil, exp.factory, log) }},
		{"nil exporter factory", func() { NewMergeService(sc, parserFactory, w, nil, log) }},
		{"nil logger", func() { NewMergeService(sc, parserFactory, w, exp.factory, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}
}

func TestMerge_IdenticalRecordAcrossFiles(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "Alice,1000\n")
	h.fs.AddFile("b.dat", "Alice,1000\nBob,2000\n")

	summary := h.merge(t, baseConfig())

	assert.Equal(t, "identity_key,total_salary\nAlice,1000\nBob,2000\n", h.output())
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 3, summary.RecordsParsed)
	assert.Equal(t, 2, summary.Stats.Identities)
}

func TestMerge_SameKeyDifferentSalary(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "Alice,1000\n")
	h.fs.AddFile("b.dat", "Alice,500\n")

	summary := h.merge(t, baseConfig())

	assert.Equal(t, "identity_key,total_salary\nAlice,1500\n", h.output())
	assert.Zero(t, summary.Duplicates)
}

func TestMerge_MalformedLineSkipped(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "Alice,1000\nBob,abc\nCarol,3000\n")

	summary := h.merge(t, baseConfig())

	assert.Equal(t, "identity_key,total_salary\nAlice,1000\nCarol,3000\n", h.output())
	assert.Equal(t, 1, summary.SkippedLines)
	require.Len(t, summary.Issues, 1)
	assert.Equal(t, datmerge.ParseIssue{File: "a.dat", Line: 2, Reason: `column 1: invalid salary "abc"`}, summary.Issues[0])
	assert.Contains(t, h.logger.warnings, "Skipping %s:%d: %s")
}

func TestMerge_EmptyDirectory(t *testing.T) {
	h := newHarness()

	summary := h.merge(t, baseConfig())

	assert.Equal(t, "identity_key,total_salary\n", h.output())
	assert.Empty(t, summary.Files)
	assert.Zero(t, summary.Stats.Identities)
	assert.Nil(t, summary.Stats.SecondHighest)
	assert.Contains(t, h.logger.warnings, "No .dat files found in %s")
}

func TestMerge_RequireInput(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("notes.txt", "Alice,1000")
	config := baseConfig()
	config.RequireInput = true

	_, err := h.service.Merge(context.Background(), config)

	require.Error(t, err)
	assert.True(t, errors.Is(err, datmerge.ErrInput))
	assert.Empty(t, h.writer.files, "nothing is written when input is required but missing")
}

func TestMerge_MissingDirectory(t *testing.T) {
	h := newHarness()
	config := baseConfig()
	config.InputDir = "/nowhere"

	_, err := h.service.Merge(context.Background(), config)

	require.Error(t, err)
	assert.Equal(t, datmerge.ExitInputError, datmerge.ExitCodeForError(err))
	assert.Empty(t, h.writer.files)
}

func TestMerge_UnreadableFileIsFatal(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "Alice,1000\n")
	h.fs.AddFile("b.dat", "Bob,2000\n")
	h.fs.FailRead("b.dat", fs.ErrPermission)

	_, err := h.service.Merge(context.Background(), baseConfig())

	require.Error(t, err)
	assert.True(t, errors.Is(err, datmerge.ErrInput))
	assert.Empty(t, h.writer.files)
}

func TestMerge_InvalidConfig(t *testing.T) {
	h := newHarness()
	config := baseConfig()
	config.OutputPath = ""

	_, err := h.service.Merge(context.Background(), config)

	require.Error(t, err)
	assert.True(t, errors.Is(err, datmerge.ErrInvalidConfig))
}

func TestMerge_WriteFailure(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "Alice,1000\n")
	h.writer.errs[outputPath] = fs.ErrPermission

	_, err := h.service.Merge(context.Background(), baseConfig())

	require.Error(t, err)
	assert.Equal(t, datmerge.ExitWriteError, datmerge.ExitCodeForError(err))
}

func TestMerge_CancelledContext(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "Alice,1000\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.service.Merge(ctx, baseConfig())

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, h.writer.files)
}

func TestMerge_Idempotent(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("b.dat", "Bob,2000\nAlice,1000\n")
	h.fs.AddFile("a.dat", "Carol,10.5\nAlice,250\n")

	first := h.merge(t, baseConfig())
	firstOutput := h.output()
	second := h.merge(t, baseConfig())

	assert.Equal(t, firstOutput, h.output())
	assert.Equal(t, first.DatasetID, second.DatasetID)
	assert.Equal(t, "identity_key,total_salary\nAlice,1250\nBob,2000\nCarol,10.5\n", firstOutput)
}

func TestMerge_Summary(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "# payroll export\nAlice,1000\nBob,2000\n")
	h.fs.AddFile("b.dat", "Alice,1000\nCarol,oops\nDan,500\n")

	summary := h.merge(t, baseConfig())

	assert.Equal(t, "/data", summary.InputDir)
	assert.Equal(t, outputPath, summary.OutputPath)
	assert.Equal(t, 5, summary.LinesRead)
	assert.Equal(t, 4, summary.RecordsParsed)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 1, summary.SkippedLines)

	require.Len(t, summary.Files, 2)
	assert.Equal(t, "a.dat", summary.Files[0].Name)
	assert.Equal(t, 2, summary.Files[0].Records)
	assert.NotEmpty(t, summary.Files[0].Checksum)
	assert.NotEmpty(t, summary.Files[0].ChecksumRaw)
	assert.Equal(t, datmerge.FileReport{
		Name:        "b.dat",
		Checksum:    summary.Files[1].Checksum,
		ChecksumRaw: summary.Files[1].ChecksumRaw,
		Lines:       3,
		Records:     2,
		Skipped:     1,
	}, summary.Files[1])

	assert.Equal(t, 3, summary.Stats.Identities)
	assert.Equal(t, 3500.0, summary.Stats.GrandTotal)
	assert.Equal(t, 1166.7, summary.Stats.Average)
	assert.Equal(t, 2000.0, summary.Stats.Highest)
	require.NotNil(t, summary.Stats.SecondHighest)
	assert.Equal(t, 1000.0, *summary.Stats.SecondHighest)

	id, err := uuid.Parse(summary.DatasetID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), id.Version())
	assert.False(t, summary.Exported)
}

func TestMerge_HeaderMismatchWarns(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "name,salary\nAlice,1000\n")
	h.fs.AddFile("b.dat", "employee,pay\nBob,2000\n")
	config := baseConfig()
	config.HasHeader = true

	h.merge(t, config)

	assert.Equal(t, "identity_key,total_salary\nAlice,1000\nBob,2000\n", h.output())
	assert.Contains(t, h.logger.warnings, "Header of %s differs from %s, keeping the header of %s")
}

func TestMerge_CustomLayout(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "id|name|base|bonus\n7|Alice|1000|200\n8|Bob|2000|0\n")
	config := baseConfig()
	config.Delimiter = '|'
	config.HasHeader = true
	config.KeyColumn = 1
	config.SalaryColumns = []int{2, 3}

	summary := h.merge(t, config)

	assert.Equal(t, "identity_key,total_salary\nAlice,1200\nBob,2000\n", h.output())
	assert.Zero(t, summary.SkippedLines)
}

func TestMerge_Export(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "Alice,1000\nBob,2000\n")
	config := baseConfig()
	config.DatabaseURL = "postgres://localhost/payroll"
	config.Table = "combined_salary"

	summary := h.merge(t, config)

	assert.True(t, summary.Exported)
	assert.Equal(t, "postgres://localhost/payroll", h.exporter.url)
	assert.Equal(t, "combined_salary", h.exporter.table)
	require.Len(t, h.exporter.exported, 1)
	assert.Equal(t, 2, h.exporter.exported[0].Len())
}

func TestMerge_ExportFailureKeepsCSV(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "Alice,1000\n")
	h.exporter.err = errors.New("connection refused")
	config := baseConfig()
	config.DatabaseURL = "postgres://localhost/payroll"
	config.Table = "combined_salary"

	summary, err := h.service.Merge(context.Background(), config)

	require.Error(t, err)
	assert.Equal(t, datmerge.ExitExportError, datmerge.ExitCodeForError(err))
	assert.Equal(t, "identity_key,total_salary\nAlice,1000\n", h.output())
	assert.NotEmpty(t, summary.DatasetID)
	assert.False(t, summary.Exported)
}

func TestMerge_NoExportWithoutURL(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "Alice,1000\n")

	h.merge(t, baseConfig())

	assert.Empty(t, h.exporter.exported)
	assert.Empty(t, h.exporter.url)
}

func TestMerge_Report(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "Alice,1000\nBob,x\n")
	config := baseConfig()
	config.ReportPath = "/out/report.yaml"

	summary := h.merge(t, config)

	assert.Equal(t, []string{outputPath, "/out/report.yaml"}, h.writer.order)

	var report datmerge.Summary
	require.NoError(t, yaml.Unmarshal(h.writer.files["/out/report.yaml"], &report))
	assert.Equal(t, summary.DatasetID, report.DatasetID)
	assert.Equal(t, 1, report.SkippedLines)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, 2, report.Issues[0].Line)
	require.Len(t, report.Files, 1)
	assert.Equal(t, summary.Files[0].ChecksumRaw, report.Files[0].ChecksumRaw)
	assert.NotEmpty(t, report.Files[0].ChecksumRaw)
}

func TestMerge_ReportWriteFailure(t *testing.T) {
	h := newHarness()
	h.fs.AddFile("a.dat", "Alice,1000\n")
	h.writer.errs["/out/report.yaml"] = fs.ErrPermission
	config := baseConfig()
	config.ReportPath = "/out/report.yaml"

	_, err := h.service.Merge(context.Background(), config)

	require.Error(t, err)
	assert.True(t, errors.Is(err, datmerge.ErrWrite))
	assert.Contains(t, h.writer.files, outputPath)
}

func TestMerge_ScannerError(t *testing.T) {
	sc := &mockFileScanner{scanErr: &datmerge.InputError{Path: "/data", Err: fs.ErrNotExist}}
	svc := NewMergeService(sc, parserFactory, newMemoryWriter(), (&mockExporter{}).factory, logging.NewNullLogger())

	_, err := svc.Merge(context.Background(), baseConfig())

	require.Error(t, err)
	assert.Equal(t, "/data", sc.scannedDir)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestDatasetID(t *testing.T) {
	a := DatasetID([]byte("identity_key,total_salary\nAlice,1000\n"))
	b := DatasetID([]byte("identity_key,total_salary\nAlice,1000\n"))
	c := DatasetID([]byte("identity_key,total_salary\nAlice,1001\n"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
