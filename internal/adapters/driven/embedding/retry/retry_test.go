package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

// fakeService scripts errors per call for retry testing.
type fakeService struct {
	calls  int
	errs   []error
	vector []float32
}

func (f *fakeService) nextErr() error {
	idx := f.calls
	f.calls++
	if idx < len(f.errs) {
		return f.errs[idx]
	}
	return nil
}

func (f *fakeService) Embed(_ context.Context, _ string) ([]float32, error) {
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return f.vector, nil
}

func (f *fakeService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeService) Dimensions() int { return len(f.vector) }

func (f *fakeService) ModelName() string { return "fake-model" }

func (f *fakeService) Ping(context.Context) error { return nil }

func (f *fakeService) Close() error { return nil }

// fastConfig keeps test runtime negligible.
func fastConfig() Config {
	return Config{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		RequestsPerSecond: 10000,
		BurstSize:         10000,
	}
}

func TestEmbed_SuccessFirstAttempt(t *testing.T) {
	inner := &fakeService{vector: []float32{1, 2, 3}}
	service := Wrap(inner, fastConfig())

	vector, err := service.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vector)
	assert.Equal(t, 1, inner.calls)
}

func TestEmbed_RetriesTransientError(t *testing.T) {
	inner := &fakeService{
		vector: []float32{1},
		errs:   []error{domain.ErrEmbeddingUnavailable, domain.ErrEmbeddingUnavailable, nil},
	}
	service := Wrap(inner, fastConfig())

	vector, err := service.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vector)
	assert.Equal(t, 3, inner.calls)
}

func TestEmbed_RetriesRateLimited(t *testing.T) {
	inner := &fakeService{
		vector: []float32{1},
		errs:   []error{domain.ErrRateLimited, nil},
	}
	service := Wrap(inner, fastConfig())

	_, err := service.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestEmbed_GivesUpAfterMaxAttempts(t *testing.T) {
	inner := &fakeService{
		vector: []float32{1},
		errs: []error{
			domain.ErrEmbeddingUnavailable,
			domain.ErrEmbeddingUnavailable,
			domain.ErrEmbeddingUnavailable,
			domain.ErrEmbeddingUnavailable,
		},
	}
	service := Wrap(inner, fastConfig())

	vector, err := service.Embed(context.Background(), "text")
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Nil(t, vector)
	assert.Equal(t, 3, inner.calls)
}

func TestEmbed_NoRetryOnPermanentError(t *testing.T) {
	permanent := errors.New("bad request")
	inner := &fakeService{vector: []float32{1}, errs: []error{permanent}}
	service := Wrap(inner, fastConfig())

	_, err := service.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, inner.calls)
}

func TestEmbed_NoRetryOnDimensionMismatch(t *testing.T) {
	inner := &fakeService{vector: []float32{1}, errs: []error{domain.ErrDimensionMismatch}}
	service := Wrap(inner, fastConfig())

	_, err := service.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 1, inner.calls)
}

func TestEmbed_WrappedTransientErrorRetried(t *testing.T) {
	wrapped := fmt.Errorf("%w: send request: connection refused", domain.ErrEmbeddingUnavailable)
	inner := &fakeService{vector: []float32{1}, errs: []error{wrapped, nil}}
	service := Wrap(inner, fastConfig())

	_, err := service.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestEmbedBatch_RetriesTransientError(t *testing.T) {
	inner := &fakeService{
		vector: []float32{1},
		errs:   []error{domain.ErrEmbeddingUnavailable, nil},
	}
	service := Wrap(inner, fastConfig())

	batch, err := service.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, batch, 2)
	assert.Equal(t, 2, inner.calls)
}

func TestEmbed_ContextCancelledDuringBackoff(t *testing.T) {
	inner := &fakeService{
		vector: []float32{1},
		errs:   []error{domain.ErrEmbeddingUnavailable, domain.ErrEmbeddingUnavailable},
	}
	cfg := fastConfig()
	cfg.InitialBackoff = time.Minute
	service := Wrap(inner, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := service.Embed(ctx, "text")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, inner.calls)
}

func TestDelegation(t *testing.T) {
	inner := &fakeService{vector: []float32{1, 2}}
	service := Wrap(inner, fastConfig())

	assert.Equal(t, 2, service.Dimensions())
	assert.Equal(t, "fake-model", service.ModelName())
	assert.NoError(t, service.Ping(context.Background()))
	assert.NoError(t, service.Close())
}

func TestWrap_Defaults(t *testing.T) {
	inner := &fakeService{vector: []float32{1}}
	service := Wrap(inner, Config{})

	assert.Equal(t, DefaultMaxAttempts, service.maxAttempts)
	assert.Equal(t, DefaultInitialBackoff, service.initialBackoff)
	assert.Equal(t, DefaultMaxBackoff, service.maxBackoff)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.EmbeddingService = (*EmbeddingService)(nil)
}
