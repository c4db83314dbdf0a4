// Package retry decorates an embedding service with rate limiting and
// bounded retries for transient failures.
//
// Only errors marked transient by the inner adapter are retried:
// domain.ErrEmbeddingUnavailable and domain.ErrRateLimited. Everything
// else, including domain.ErrDimensionMismatch, fails immediately.
package retry

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultMaxAttempts       = 3
	DefaultInitialBackoff    = 500 * time.Millisecond
	DefaultMaxBackoff        = 8 * time.Second
	DefaultRequestsPerSecond = 10.0
	DefaultBurstSize         = 20
)

// Config holds retry and rate limit configuration.
type Config struct {
	// MaxAttempts is the total number of tries per call (default: 3).
	MaxAttempts int

	// InitialBackoff is the delay before the first retry (default: 500ms).
	// Each subsequent retry doubles it.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between retries (default: 8s).
	MaxBackoff time.Duration

	// RequestsPerSecond is the sustained rate limit (default: 10).
	RequestsPerSecond float64

	// BurstSize is the maximum burst size (default: 20).
	BurstSize int
}

// EmbeddingService wraps another embedding service with retries.
type EmbeddingService struct {
	inner          driven.EmbeddingService
	limiter        *rate.Limiter
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// Wrap decorates the given embedding service.
func Wrap(inner driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultBurstSize
	}

	return &EmbeddingService{
		inner:          inner,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var result []float32
	err := s.do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = s.inner.Embed(ctx, text)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var result [][]float32
	err := s.do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = s.inner.EmbedBatch(ctx, texts)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// do runs the operation under the rate limiter, retrying transient
// failures with exponential backoff.
func (s *EmbeddingService) do(ctx context.Context, op func(context.Context) error) error {
	backoff := s.initialBackoff
	var lastErr error

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == s.maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}

	return lastErr
}

// retryable reports whether the error is worth another attempt.
func retryable(err error) bool {
	return errors.Is(err, domain.ErrEmbeddingUnavailable) || errors.Is(err, domain.ErrRateLimited)
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates to the inner service without retrying; a ping is
// already a cheap availability probe.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases the inner service's resources.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}
