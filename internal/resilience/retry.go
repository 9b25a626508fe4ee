package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Config controls retry behavior. Delays are fixed: the remote endpoint
// applies its own rate limiting, so there is nothing to gain from backoff
// growth or jitter here.
type Config struct {
	// Op names the operation in logs and in ExhaustedError.
	Op string

	// Attempts is the total number of attempts (including the first try).
	// A value of 1 means no retries. Default: 3.
	Attempts int

	// Delay is the fixed sleep between attempts. Default: 2s.
	Delay time.Duration

	// ShouldRetry optionally overrides the default transient-error check.
	// If nil, IsTransient is used.
	ShouldRetry func(err error) bool
}

// LLMCallConfig is the retry budget for remote LLM invocations: 10 attempts
// with a fixed 2 second delay.
func LLMCallConfig(op string) Config {
	return Config{
		Op:       op,
		Attempts: 10,
		Delay:    2 * time.Second,
	}
}

func applyDefaults(cfg Config) Config {
	if cfg.Op == "" {
		cfg.Op = "operation"
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 2 * time.Second
	}
	return cfg
}

// Do executes fn under cfg, retrying transient failures with a fixed delay.
// Context cancellation stops retries immediately. Once the attempt budget is
// spent, the last error is returned wrapped in *ExhaustedError.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal executes fn returning a value under cfg. Same semantics as Do but
// preserves the return value from the successful call.
func DoVal[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = applyDefaults(cfg)

	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}

		if !shouldRetry(lastErr) {
			return zero, lastErr
		}

		if attempt == cfg.Attempts {
			break
		}

		zap.L().Warn("retrying operation",
			zap.String("operation", cfg.Op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", cfg.Delay),
			zap.Error(lastErr),
		)

		timer := time.NewTimer(cfg.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, &ExhaustedError{Op: cfg.Op, Attempts: cfg.Attempts, Err: lastErr}
}
