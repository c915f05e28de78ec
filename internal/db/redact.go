package db

import (
	"net/url"
	"regexp"
	"strings"
)

var dsnPasswordPattern = regexp.MustCompile(`(?i)(password\s*=\s*)('(?:[^'\\]|\\.)*'|\S+)`)

// RedactURL hides the password of a connection string so it can be logged.
// Both URL and keyword/value forms are supported.
func RedactURL(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return "postgres://***"
		}
		return u.Redacted()
	}
	return dsnPasswordPattern.ReplaceAllString(connStr, "${1}xxxxx")
}
