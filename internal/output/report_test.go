package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/datmerge/pkg/datmerge"
	"gopkg.in/yaml.v3"
)

func TestEncodeReport(t *testing.T) {
	second := 1000.0
	summary := datmerge.Summary{
		DatasetID:  "7d6c2b7e-1111-5222-8333-444455556666",
		InputDir:   "data",
		OutputPath: "result/combined_data.csv",
		Files: []datmerge.FileReport{
			{Name: "a.dat", Checksum: "abc", ChecksumRaw: "def", Lines: 2, Records: 1, Skipped: 1},
		},
		LinesRead:     2,
		RecordsParsed: 1,
		SkippedLines:  1,
		Issues:        []datmerge.ParseIssue{{File: "a.dat", Line: 2, Reason: `invalid salary "abc"`}},
		Stats:         datmerge.Stats{Identities: 2, GrandTotal: 3000, Average: 1500, Highest: 2000, SecondHighest: &second},
	}

	data, err := EncodeReport(summary)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "dataset_id: 7d6c2b7e-1111-5222-8333-444455556666\n")
	assert.Contains(t, text, "name: a.dat\n")
	assert.Contains(t, text, "sha256: abc\n")
	assert.Contains(t, text, "sha256_raw: def\n")
	assert.Contains(t, text, "second_highest: 1000\n")
	assert.Contains(t, text, "exported: false\n")

	var decoded datmerge.Summary
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, summary, decoded)
}

func TestEncodeReport_OmitsEmptyIssues(t *testing.T) {
	data, err := EncodeReport(datmerge.Summary{})
	require.NoError(t, err)

	text := string(data)
	assert.NotContains(t, text, "issues:")
	assert.Contains(t, text, "second_highest: null\n")
}
