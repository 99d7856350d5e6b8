package ai_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/mosaic/ai"
	"github.com/poiesic/mosaic/ai/mock"
	"github.com/poiesic/mosaic/limits"
)

func newService(t *testing.T, cfg *ai.Config, text *mock.MockEmbedder, mm *mock.MockMultimodalEmbedder) *ai.EmbeddingService {
	t.Helper()
	codec, err := limits.NewTokenCodec()
	require.NoError(t, err)
	svc, err := ai.NewEmbeddingService(text, mm, codec, cfg)
	require.NoError(t, err)
	return svc
}

func testConfig() *ai.Config {
	cfg := ai.DefaultConfig()
	cfg.EmbeddingDimensions = 8
	cfg.MultimodalDimensions = 4
	cfg.EmbeddingTokenLimit = 32
	cfg.ContextByteLimit = 16
	return cfg
}

func TestEmbedText_ResultDimension(t *testing.T) {
	cfg := testConfig()
	svc := newService(t, cfg, mock.NewMockEmbedder(8), mock.NewMockMultimodalEmbedder(4))

	vector, err := svc.EmbedText(context.Background(), "hello embedding")
	require.NoError(t, err)
	assert.Len(t, vector, cfg.EmbeddingDimensions, "result vector always has dimension A")
}

func TestEmbedText_TruncatesToTokenLimit(t *testing.T) {
	cfg := testConfig()
	codec, err := limits.NewTokenCodec()
	require.NoError(t, err)

	var received string
	text := mock.NewMockEmbedder(8)
	text.EmbedTextFunc = func(ctx context.Context, input string) ([]float32, error) {
		received = input
		return make([]float32, 8), nil
	}
	svc := newService(t, cfg, text, mock.NewMockMultimodalEmbedder(4))

	long := strings.Repeat("substantially oversized embedding input ", 100)
	_, err = svc.EmbedText(context.Background(), long)
	require.NoError(t, err)
	assert.LessOrEqual(t, codec.Count(received), cfg.EmbeddingTokenLimit,
		"content submitted to the text backend never exceeds its token limit")
}

func TestEmbedText_DimensionMismatchFatal(t *testing.T) {
	cfg := testConfig()
	text := mock.NewMockEmbedder(8)
	text.EmbedTextFunc = func(ctx context.Context, input string) ([]float32, error) {
		return make([]float32, 17), nil
	}
	svc := newService(t, cfg, text, mock.NewMockMultimodalEmbedder(4))

	_, err := svc.EmbedText(context.Background(), "text")
	require.ErrorIs(t, err, ai.ErrDimensionMismatch)
	assert.False(t, limits.Retryable(err), "a contract violation is not retryable")
}

func TestEmbedText_TimeoutClassified(t *testing.T) {
	cfg := testConfig()
	cfg.EmbeddingTimeout = 20 * time.Millisecond

	text := mock.NewMockEmbedder(8)
	text.EmbedTextFunc = func(ctx context.Context, input string) ([]float32, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	svc := newService(t, cfg, text, mock.NewMockMultimodalEmbedder(4))

	_, err := svc.EmbedText(context.Background(), "text")
	var timeoutErr *limits.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "embed-text", timeoutErr.Op)
}

func TestEmbedText_BackendErrorPropagates(t *testing.T) {
	cfg := testConfig()
	text := mock.NewMockEmbedder(8)
	text.EmbedTextFunc = func(ctx context.Context, input string) ([]float32, error) {
		return nil, &ai.ServiceError{Backend: "text-embedding", Err: errors.New("401 unauthorized")}
	}
	svc := newService(t, cfg, text, mock.NewMockMultimodalEmbedder(4))

	_, err := svc.EmbedText(context.Background(), "text")
	var svcErr *ai.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.True(t, limits.Retryable(err), "backend failures are retryable with backoff")
}

func TestEmbedMultimodal_ResultDimension(t *testing.T) {
	cfg := testConfig()
	svc := newService(t, cfg, mock.NewMockEmbedder(8), mock.NewMockMultimodalEmbedder(4))

	vector, err := svc.EmbedMultimodal(context.Background(), ai.Media{Data: []byte{1, 2}, MIMEType: "image/png"}, "ctx")
	require.NoError(t, err)
	assert.Len(t, vector, cfg.MultimodalDimensions, "result vector always has dimension B")
}

func TestEmbedMultimodal_TruncatesContextBytes(t *testing.T) {
	cfg := testConfig()

	var received string
	mm := mock.NewMockMultimodalEmbedder(4)
	mm.EmbedMultimodalFunc = func(ctx context.Context, media ai.Media, contextText string) ([]float32, error) {
		received = contextText
		return make([]float32, 4), nil
	}
	svc := newService(t, cfg, mock.NewMockEmbedder(8), mm)

	// Multi-byte runes across the cut point must not be split.
	long := strings.Repeat("画像🎞", 40)
	_, err := svc.EmbedMultimodal(context.Background(), ai.Media{Data: []byte{1}, MIMEType: "image/png"}, long)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(received), cfg.ContextByteLimit,
		"context submitted to the multimodal backend never exceeds its byte limit")
	assert.True(t, strings.HasPrefix(long, received))
}

func TestEmbedMultimodal_DimensionMismatchFatal(t *testing.T) {
	cfg := testConfig()
	mm := mock.NewMockMultimodalEmbedder(4)
	mm.EmbedMultimodalFunc = func(ctx context.Context, media ai.Media, contextText string) ([]float32, error) {
		return make([]float32, 5), nil
	}
	svc := newService(t, cfg, mock.NewMockEmbedder(8), mm)

	_, err := svc.EmbedMultimodal(context.Background(), ai.Media{Data: []byte{1}}, "ctx")
	assert.ErrorIs(t, err, ai.ErrDimensionMismatch)
}

func TestEmbedMultimodal_NoSilentDegradation(t *testing.T) {
	cfg := testConfig()
	mm := mock.NewMockMultimodalEmbedder(4)
	mm.EmbedMultimodalFunc = func(ctx context.Context, media ai.Media, contextText string) ([]float32, error) {
		return nil, &ai.ServiceError{Backend: "multimodal-embedding", Err: errors.New("mid-flight failure")}
	}
	svc := newService(t, cfg, mock.NewMockEmbedder(8), mm)

	vector, err := svc.EmbedMultimodal(context.Background(), ai.Media{Data: []byte{1}}, "ctx")
	require.Error(t, err, "failures must propagate, never be substituted with a degraded result")
	assert.Nil(t, vector)
}
