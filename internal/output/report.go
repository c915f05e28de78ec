package output

import (
	"bytes"
	"fmt"

	"github.com/vvka-141/datmerge/pkg/datmerge"
	"gopkg.in/yaml.v3"
)

// EncodeReport renders a run summary as YAML.
func EncodeReport(summary datmerge.Summary) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(summary); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), nil
}
