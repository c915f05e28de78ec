package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Calculator is an interface for computing file checksums.
type Calculator interface {
	// CalculateRaw computes a checksum of the raw, unmodified content.
	CalculateRaw(content []byte) string

	// CalculateNormalized computes a checksum of normalized content.
	CalculateNormalized(content []byte) string
}

// SHA256 implements checksum calculation using SHA-256.
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple goroutines.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateNormalized computes SHA-256 of normalized content.
func (c SHA256) CalculateNormalized(content []byte) string {
	hash := sha256.Sum256([]byte(c.normalize(string(content))))
	return hex.EncodeToString(hash[:])
}

func (c SHA256) normalize(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var b strings.Builder
	b.Grow(len(content))

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return b.String()
}
