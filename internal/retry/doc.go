// Package retry reruns a whole update run with exponential backoff when it
// failed for a transient reason, such as a mirror answering 503 while an
// installer was downloaded.
//
// Retries wrap the run from the outside. Nothing inside reconciliation or
// extraction retries on its own, and a retried run starts again from the
// unmodified source manifests because a failed run writes nothing.
//
// # Example Usage
//
//	classifier := retry.NewReleaseErrorClassifier()
//	strategy := retry.NewExponentialBackoff(2)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    _, err := updater.Update(ctx, cfg)
//	    return err
//	})
//
// # Error Classification
//
// ReleaseErrorClassifier treats network failures and HTTP 408, 429 and 5xx
// answers as transient. Count mismatches, unsupported installer formats,
// schema validation failures and configuration errors are fatal.
package retry
