package scanner

import (
	"path/filepath"
	"strings"

	"github.com/vvka-141/datmerge/internal/checksum"
	"github.com/vvka-141/datmerge/internal/files/filesystem"
	"github.com/vvka-141/datmerge/pkg/datmerge"
)

// Scanner discovers and reads .dat files from a directory.
// Scanner is safe for concurrent use by multiple goroutines as long as
// the provided calculator and fsProvider are also thread-safe.
type Scanner struct {
	calculator checksum.Calculator
	fsProvider filesystem.FileSystemProvider
}

// NewScanner creates a new file scanner with the given checksum calculator.
// Uses OS filesystem by default.
// Panics if calculator is nil.
func NewScanner(calculator checksum.Calculator) *Scanner {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	return &Scanner{
		calculator: calculator,
		fsProvider: filesystem.NewOSFileSystem(),
	}
}

// NewScannerWithFS creates a new file scanner with a custom filesystem provider.
// This is primarily useful for testing with in-memory filesystems.
// Panics if calculator or fsProvider is nil.
func NewScannerWithFS(calculator checksum.Calculator, fsProvider filesystem.FileSystemProvider) *Scanner {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{
		calculator: calculator,
		fsProvider: fsProvider,
	}
}

// ScanDirectory lists the .dat files directly inside dir, sorted by name,
// and reads each of them.
//
// A missing directory, a path that is not a directory, or a directory or
// .dat file that cannot be read yields a *datmerge.InputError. A directory
// without .dat files yields an empty result.
func (s *Scanner) ScanDirectory(dir string) (datmerge.ScanResult, error) {
	info, err := s.fsProvider.Stat(dir)
	if err != nil {
		return datmerge.ScanResult{}, &datmerge.InputError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return datmerge.ScanResult{}, &datmerge.InputError{Path: dir, Err: errNotDirectory}
	}

	entries, err := s.fsProvider.ReadDir(dir)
	if err != nil {
		return datmerge.ScanResult{}, &datmerge.InputError{Path: dir, Err: err}
	}

	files := make([]datmerge.SourceFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !entry.Mode().IsRegular() || !IsDataFile(entry.Name()) {
			continue
		}

		file, err := s.readFile(filepath.Join(dir, entry.Name()), entry)
		if err != nil {
			return datmerge.ScanResult{}, err
		}
		files = append(files, file)
	}

	return datmerge.ScanResult{Files: files}, nil
}

func (s *Scanner) readFile(path string, info filesystem.FileInfo) (datmerge.SourceFile, error) {
	content, err := s.fsProvider.ReadFile(path)
	if err != nil {
		return datmerge.SourceFile{}, &datmerge.InputError{Path: path, Err: err}
	}

	return datmerge.SourceFile{
		Name:        info.Name(),
		Path:        path,
		SizeBytes:   info.Size(),
		Content:     content,
		Checksum:    s.calculator.CalculateNormalized(content),
		ChecksumRaw: s.calculator.CalculateRaw(content),
	}, nil
}

// IsDataFile reports whether name carries the .dat extension, ignoring case.
func IsDataFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), datmerge.DataFileExtension)
}

// Verify Scanner implements the interface at compile time
var _ datmerge.FileScanner = (*Scanner)(nil)
