// Package retry retries operations that fail with transient errors,
// waiting with exponential backoff between attempts.
//
// The PostgreSQL export uses it to survive a database that is still
// starting up or briefly unreachable:
//
//	executor := retry.NewExecutor(
//	    retry.NewPostgreSQLErrorClassifier(),
//	    retry.NewExponentialBackoff(datmerge.DefaultRetryMaxAttempts),
//	)
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    conn, err = pgx.Connect(ctx, url)
//	    return err
//	})
//
// Classification and timing are pluggable through the datmerge
// ErrorClassifier and BackoffStrategy interfaces.
package retry
