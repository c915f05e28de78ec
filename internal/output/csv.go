package output

import (
	"bytes"
	"encoding/csv"

	"github.com/vvka-141/datmerge/pkg/datmerge"
)

// EncodeCSV renders set as the combined output file: the header row
// followed by one row per entry, in the set's order, with "\n" line endings.
// Keys containing commas, quotes or newlines are quoted.
func EncodeCSV(set datmerge.RecordSet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(datmerge.OutputHeader()); err != nil {
		return nil, err
	}
	for _, e := range set.Entries {
		if err := w.Write(e.Row()); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
