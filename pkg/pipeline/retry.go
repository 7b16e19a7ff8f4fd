package pipeline

import (
	"context"
	"log"
	"math"
	"time"
)

// withRetry runs op up to maxAttempts times, sleeping backoffBase^attempt
// seconds between failed attempts. The sleep function is injectable so tests
// can run without real backoff delays.
func withRetry[T any](
	ctx context.Context,
	label string,
	maxAttempts int,
	backoffBase float64,
	sleep func(time.Duration),
	logger *log.Logger,
	op func(context.Context) (T, error),
) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt < maxAttempts {
			wait := time.Duration(math.Pow(backoffBase, float64(attempt)) * float64(time.Second))
			logger.Printf("[RETRY] %s attempt %d/%d failed: %v. Retrying in %.1fs",
				label, attempt, maxAttempts, err, wait.Seconds())
			sleep(wait)
		}
	}

	return zero, lastErr
}
