package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/datmerge/internal/retry"
	"github.com/vvka-141/datmerge/pkg/datmerge"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns is small: an export uses a single transaction.
	DefaultMaxConns = 2

	// DefaultMaxConnIdleTime releases idle connections of long runs.
	DefaultMaxConnIdleTime = 5 * time.Minute
)

// Connector opens connection pools with automatic retry on transient failures.
type Connector struct {
	executor *retry.Executor
}

// NewConnector creates a Connector with the default retry policy:
// DefaultRetryMaxAttempts retries with exponential backoff starting at
// DefaultRetryInitialDelay and capped at DefaultRetryMaxDelay.
// Each retry is logged as a warning.
// Panics if logger is nil.
func NewConnector(logger datmerge.Logger) *Connector {
	strategy := retry.NewExponentialBackoff(datmerge.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(datmerge.DefaultRetryInitialDelay),
		retry.WithMaxDelay(datmerge.DefaultRetryMaxDelay),
	)
	return NewConnectorWithStrategy(strategy, logger)
}

// NewConnectorWithStrategy creates a Connector with a custom backoff strategy.
// Panics if strategy or logger is nil.
func NewConnectorWithStrategy(strategy datmerge.BackoffStrategy, logger datmerge.Logger) *Connector {
	if logger == nil {
		panic("logger cannot be nil")
	}
	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Warn("Connection attempt %d failed, retrying in %s: %v", attempt+1, delay.Round(time.Millisecond), err)
		})
	return &Connector{executor: executor}
}

// Connect opens a pool for connStr and verifies it with a ping.
func (c *Connector) Connect(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL %s: %w", RedactURL(connStr), err)
	}
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime

	target := target{
		host:     poolConfig.ConnConfig.Host,
		port:     poolConfig.ConnConfig.Port,
		database: poolConfig.ConnConfig.Database,
	}

	var pool *pgxpool.Pool
	err = c.executor.Execute(ctx, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, wrapConnectionError(err, target)
	}

	return pool, nil
}

type target struct {
	host     string
	port     uint16
	database string
}

func (t target) addr() string {
	return t.host + ":" + strconv.Itoa(int(t.port))
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, t target) error {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port in the database URL

Original error: %w`, t.addr(), t.host, t.port, err)

	case strings.Contains(errStr, "no such host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable

Original error: %w`, t.host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password in DATABASE_URL or --database-url
  - User does not have access to the database

Original error: %w`, t.database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  createdb %s

Original error: %w`, t.database, t.database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets

Original error: %w`, t.addr(), err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}
