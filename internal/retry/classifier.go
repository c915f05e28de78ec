package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/datmerge/pkg/datmerge"
)

// Transient SQLSTATE classes.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
var transientClasses = []string{
	"08", // connection exception
	"53", // insufficient resources
	"57", // operator intervention
}

// Transient SQLSTATE codes outside those classes.
var transientCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// Lowercased message fragments of connection failures that reach us
// without a typed error.
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"server closed the connection",
	"unexpected eof",
	"the database system is starting up",
}

var transientErrnos = []syscall.Errno{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ENETUNREACH,
	syscall.EHOSTUNREACH,
}

// PostgreSQLErrorClassifier recognizes transient PostgreSQL and network errors.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient reports whether retrying the failed operation may succeed.
// A server error with a non-transient SQLSTATE is never retried, even when
// its message looks like a network failure.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientCode(pgErr.Code)
	}

	return isNetworkError(err) || hasTransientMessage(err)
}

func isTransientCode(code string) bool {
	if transientCodes[code] {
		return true
	}
	for _, class := range transientClasses {
		if strings.HasPrefix(code, class) {
			return true
		}
	}
	return false
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		for _, errno := range transientErrnos {
			if errors.Is(opErr.Err, errno) {
				return true
			}
		}
	}

	return false
}

func hasTransientMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientMessages {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

var _ datmerge.ErrorClassifier = (*PostgreSQLErrorClassifier)(nil)
