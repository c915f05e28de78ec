package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyOperation fails with err for the first failures invocations.
type flakyOperation struct {
	invocations int
	failures    int
	err         error
}

func (f *flakyOperation) run(ctx context.Context) error {
	f.invocations++
	if f.invocations <= f.failures {
		return f.err
	}
	return nil
}

var transientErr = &pgconn.PgError{Code: "08006", Message: "connection failure"}

func fastBackoff(maxAttempts int) *ExponentialBackoff {
	return NewExponentialBackoff(maxAttempts, WithInitialDelay(time.Millisecond), WithJitter(0))
}

func TestNewExecutor_NilArgs(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, fastBackoff(1)) })
	assert.Panics(t, func() { NewExecutor(NewPostgreSQLErrorClassifier(), nil) })
}

func TestExecutor_SuccessOnFirstAttempt(t *testing.T) {
	op := &flakyOperation{}

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(3)).Execute(context.Background(), op.run)

	require.NoError(t, err)
	assert.Equal(t, 1, op.invocations)
}

func TestExecutor_SuccessAfterRetries(t *testing.T) {
	op := &flakyOperation{failures: 2, err: transientErr}

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(3)).Execute(context.Background(), op.run)

	require.NoError(t, err)
	assert.Equal(t, 3, op.invocations)
}

func TestExecutor_ExhaustsRetries(t *testing.T) {
	op := &flakyOperation{failures: 10, err: transientErr}

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(3)).Execute(context.Background(), op.run)

	assert.Equal(t, transientErr, err)
	assert.Equal(t, 4, op.invocations, "one attempt plus three retries")
}

func TestExecutor_NoRetries(t *testing.T) {
	op := &flakyOperation{failures: 10, err: transientErr}

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(0)).Execute(context.Background(), op.run)

	assert.Error(t, err)
	assert.Equal(t, 1, op.invocations)
}

func TestExecutor_FatalErrorNotRetried(t *testing.T) {
	fatal := &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}
	op := &flakyOperation{failures: 10, err: fatal}

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(3)).Execute(context.Background(), op.run)

	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, op.invocations)
}

func TestExecutor_ContextCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	strategy := NewExponentialBackoff(5, WithInitialDelay(time.Hour), WithMaxDelay(time.Hour), WithJitter(0))
	executor := NewExecutor(NewPostgreSQLErrorClassifier(), strategy).
		WithOnRetry(func(int, error, time.Duration) { cancel() })
	op := &flakyOperation{failures: 10, err: transientErr}

	err := executor.Execute(ctx, op.run)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, op.invocations)
}

func TestExecutor_WithOnRetry(t *testing.T) {
	type call struct {
		attempt int
		delay   time.Duration
	}
	var calls []call

	base := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(3))
	executor := base.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		calls = append(calls, call{attempt, delay})
	})
	op := &flakyOperation{failures: 2, err: transientErr}

	require.NoError(t, executor.Execute(context.Background(), op.run))
	assert.Equal(t, []call{{0, time.Millisecond}, {1, 2 * time.Millisecond}}, calls)

	calls = nil
	op = &flakyOperation{failures: 1, err: transientErr}
	require.NoError(t, base.Execute(context.Background(), op.run))
	assert.Empty(t, calls, "WithOnRetry must not modify the receiver")
}
