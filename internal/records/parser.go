package records

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vvka-141/datmerge/pkg/datmerge"
)

const commentPrefix = "#"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options control how lines are split into fields.
type Options struct {
	// Delimiter separates fields. Zero means datmerge.DefaultDelimiter.
	Delimiter rune

	// HasHeader treats the first non-blank line as a header row.
	HasHeader bool

	// KeyColumn is the zero-based column of the identity key.
	KeyColumn int

	// SalaryColumns lists the salary component columns.
	// Empty means every column except KeyColumn, with the field count
	// fixed by the header or by the first data line.
	SalaryColumns []int
}

// OptionsFromConfig extracts the parsing options of a merge configuration.
func OptionsFromConfig(cfg datmerge.MergeConfig) Options {
	return Options{
		Delimiter:     cfg.Delimiter,
		HasHeader:     cfg.HasHeader,
		KeyColumn:     cfg.KeyColumn,
		SalaryColumns: cfg.SalaryColumns,
	}
}

// Parser parses .dat file content into records.
// A Parser holds no per-file state and is safe for concurrent use.
type Parser struct {
	opts Options
}

// NewParser creates a parser with the given options.
func NewParser(opts Options) *Parser {
	if opts.Delimiter == 0 {
		opts.Delimiter = datmerge.DefaultDelimiter
	}
	return &Parser{opts: opts}
}

// Parse parses every line of file. Lines that cannot be parsed are
// returned as issues; Parse itself never fails.
func (p *Parser) Parse(file datmerge.SourceFile) datmerge.ParseResult {
	var result datmerge.ParseResult

	state := fileState{columns: p.opts.SalaryColumns}
	content := bytes.TrimPrefix(file.Content, utf8BOM)

	for i, raw := range bytes.Split(content, []byte{'\n'}) {
		lineNo := i + 1
		line := strings.TrimSuffix(string(raw), "\r")

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
			continue
		}

		fields, err := p.split(line)
		if err != nil {
			result.Lines++
			result.Issues = append(result.Issues, issue(file.Name, lineNo, err.Error()))
			continue
		}

		if p.opts.HasHeader && result.Header == nil {
			result.Header = trimAll(fields)
			if len(p.opts.SalaryColumns) == 0 {
				state.fix(len(fields), p.opts.KeyColumn)
			}
			continue
		}

		result.Lines++
		record, perr := p.parseFields(&state, fields)
		if perr != "" {
			result.Issues = append(result.Issues, issue(file.Name, lineNo, perr))
			continue
		}
		record.Source = file.Name
		record.Line = lineNo
		result.Records = append(result.Records, record)
	}

	return result
}

// fileState carries the column layout fixed while parsing one file.
type fileState struct {
	columns []int
	fields  int
}

func (s *fileState) fix(fields, keyColumn int) {
	s.fields = fields
	s.columns = make([]int, 0, fields)
	for col := 0; col < fields; col++ {
		if col != keyColumn {
			s.columns = append(s.columns, col)
		}
	}
}

func (p *Parser) split(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = p.opts.Delimiter
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	fields, err := r.Read()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("malformed line: %v", pe.Err)
		}
		return nil, fmt.Errorf("malformed line: %v", err)
	}
	return fields, nil
}

// parseFields parses one data line. Until a line parses successfully the
// layout is tentative and taken from the line itself; the first good line
// fixes it for the rest of the file.
func (p *Parser) parseFields(state *fileState, fields []string) (datmerge.Record, string) {
	layout := *state
	if layout.columns == nil {
		if len(fields) < 2 || len(fields) <= p.opts.KeyColumn {
			return datmerge.Record{}, fmt.Sprintf("too few fields: got %d", len(fields))
		}
		layout.fix(len(fields), p.opts.KeyColumn)
	}
	if len(layout.columns) == 0 {
		return datmerge.Record{}, "no salary columns"
	}

	if layout.fields > 0 && len(fields) != layout.fields {
		return datmerge.Record{}, fmt.Sprintf("expected %d fields, got %d", layout.fields, len(fields))
	}

	need := p.opts.KeyColumn
	for _, col := range layout.columns {
		if col > need {
			need = col
		}
	}
	if len(fields) <= need {
		return datmerge.Record{}, fmt.Sprintf("too few fields: need %d, got %d", need+1, len(fields))
	}

	key := strings.TrimSpace(fields[p.opts.KeyColumn])
	if key == "" {
		return datmerge.Record{}, "empty identity key"
	}

	salaries := make([]float64, 0, len(layout.columns))
	for _, col := range layout.columns {
		amount, reason := parseAmount(fields[col])
		if reason != "" {
			return datmerge.Record{}, fmt.Sprintf("column %d: %s", col, reason)
		}
		salaries = append(salaries, amount)
	}

	*state = layout
	return datmerge.Record{Key: key, Salaries: salaries}, ""
}

// parseAmount parses one salary component. It returns a non-empty reason
// when the value is not a finite, non-negative number.
func parseAmount(field string) (float64, string) {
	s := strings.TrimSpace(field)
	if s == "" {
		return 0, "empty salary"
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("invalid salary %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Sprintf("salary %q is not a finite number", s)
	}
	if v < 0 {
		return 0, fmt.Sprintf("negative salary %q", s)
	}
	if v == 0 {
		// drop the sign of -0
		v = 0
	}
	return v, ""
}

func issue(file string, line int, reason string) datmerge.ParseIssue {
	return (&datmerge.ParseError{File: file, Line: line, Reason: reason}).Issue()
}

func trimAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}

// Verify Parser implements the interface at compile time
var _ datmerge.RecordParser = (*Parser)(nil)
