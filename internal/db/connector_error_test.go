package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapConnectionError(t *testing.T) {
	local := target{host: "127.0.0.1", port: 5432, database: "payroll"}

	tests := []struct {
		name         string
		errMsg       string
		wantContains string
	}{
		{
			name:         "connection refused",
			errMsg:       "dial tcp 127.0.0.1:5432: connection refused",
			wantContains: "connection refused to 127.0.0.1:5432",
		},
		{
			name:         "actively refused (Windows)",
			errMsg:       "connectex: No connection could be made because the target machine actively refused it",
			wantContains: "connection refused to 127.0.0.1:5432",
		},
		{
			name:         "no such host",
			errMsg:       "dial tcp: lookup 127.0.0.1: no such host",
			wantContains: `cannot resolve host "127.0.0.1"`,
		},
		{
			name:         "password auth failed",
			errMsg:       `FATAL: password authentication failed for user "postgres"`,
			wantContains: `password authentication failed for database "payroll"`,
		},
		{
			name:         "database does not exist",
			errMsg:       `FATAL: database "payroll" does not exist`,
			wantContains: "createdb payroll",
		},
		{
			name:         "timeout",
			errMsg:       "dial tcp 127.0.0.1:5432: i/o timeout",
			wantContains: "connection timed out to 127.0.0.1:5432",
		},
		{
			name:         "other",
			errMsg:       "something unexpected",
			wantContains: "failed to connect to database: something unexpected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := errors.New(tt.errMsg)
			err := wrapConnectionError(original, local)

			assert.Contains(t, err.Error(), tt.wantContains)
			assert.True(t, errors.Is(err, original), "original error must stay in the chain")
		})
	}
}
