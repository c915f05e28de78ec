package services

import (
	"context"
	"sync"

	"github.com/vvka-141/datmerge/pkg/datmerge"
)

type mockFileScanner struct {
	scanResult datmerge.ScanResult
	scanErr    error
	scannedDir string
}

func (m *mockFileScanner) ScanDirectory(dir string) (datmerge.ScanResult, error) {
	m.scannedDir = dir
	return m.scanResult, m.scanErr
}

// memoryWriter records written files instead of touching the disk.
type memoryWriter struct {
	files map[string][]byte
	order []string
	errs  map[string]error
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{files: map[string][]byte{}, errs: map[string]error{}}
}

func (m *memoryWriter) WriteFile(path string, data []byte) error {
	if err := m.errs[path]; err != nil {
		return &datmerge.WriteError{Path: path, Err: err}
	}
	m.files[path] = append([]byte(nil), data...)
	m.order = append(m.order, path)
	return nil
}

type mockExporter struct {
	mu       sync.Mutex
	url      string
	table    string
	exported []datmerge.RecordSet
	err      error
}

func (m *mockExporter) factory(url, table string) datmerge.Exporter {
	m.url = url
	m.table = table
	return m
}

func (m *mockExporter) Export(_ context.Context, set datmerge.RecordSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return &datmerge.ExportError{Table: m.table, Err: m.err}
	}
	m.exported = append(m.exported, set)
	return nil
}

// recordingLogger keeps warnings for assertions.
type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Verbose(format string, args ...interface{}) {}
func (l *recordingLogger) Info(format string, args ...interface{})    {}
func (l *recordingLogger) Error(format string, args ...interface{})   {}

func (l *recordingLogger) Warn(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, format)
}
