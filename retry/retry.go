// Package retry provides exponential backoff retry logic with jitter,
// built on cenkalti/backoff. Errors classified as permanent stop the retry
// loop immediately.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config holds retry configuration.
type Config struct {
	// MaxRetries is the maximum number of retry attempts after the first try.
	MaxRetries uint64
	// InitialBackoff is the initial delay before retrying.
	InitialBackoff time.Duration
	// MaxBackoff is the maximum delay between retries.
	MaxBackoff time.Duration
	// Multiplier is the exponential backoff multiplier.
	Multiplier float64
	// JitterFraction is the randomization applied to each backoff (0.0-1.0).
	JitterFraction float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

// ErrorClassifier reports whether an error is worth retrying.
type ErrorClassifier func(error) bool

// IsRetryable is the default classifier: context errors are permanent,
// everything else is retried.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Do executes fn with exponential backoff, using the classifier to decide
// whether a failure is retryable. The context cancels both the operation
// and the inter-attempt sleeps.
func Do(ctx context.Context, cfg Config, classifier ErrorClassifier, fn func(context.Context) error) error {
	if classifier == nil {
		classifier = IsRetryable
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.InitialBackoff
	exp.MaxInterval = cfg.MaxBackoff
	exp.Multiplier = cfg.Multiplier
	exp.RandomizationFactor = cfg.JitterFraction
	exp.MaxElapsedTime = 0 // bounded by MaxRetries, not wall clock

	operation := func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !classifier(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithMaxRetries(exp, cfg.MaxRetries)
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}
