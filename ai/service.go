// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/mosaic/limits"
)

// EmbeddingService fronts the two embedding backends with the policy every
// caller relies on: deterministic input truncation, an explicit timeout on
// each call, and verification of the returned vector's dimension. A failed
// call is never substituted with a degraded or cached result; failures
// propagate as typed errors.
type EmbeddingService struct {
	text       Embedder
	multimodal MultimodalEmbedder
	codec      *limits.TokenCodec
	config     *Config
	logger     *slog.Logger
}

// ServiceOption configures an EmbeddingService.
type ServiceOption func(*EmbeddingService)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *EmbeddingService) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewEmbeddingService wraps the given backends with truncation, timeout and
// dimension-check policy from config.
func NewEmbeddingService(text Embedder, multimodal MultimodalEmbedder, codec *limits.TokenCodec, config *Config, opts ...ServiceOption) (*EmbeddingService, error) {
	if text == nil {
		return nil, fmt.Errorf("text embedder required")
	}
	if multimodal == nil {
		return nil, fmt.Errorf("multimodal embedder required")
	}
	if codec == nil {
		return nil, fmt.Errorf("token codec required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &EmbeddingService{
		text:       text,
		multimodal: multimodal,
		codec:      codec,
		config:     config,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "embedding-service")
	return s, nil
}

// EmbedText truncates text to the backend's token limit, calls the text
// embedding backend under its timeout, and verifies the result has
// dimension A.
func (s *EmbeddingService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	truncated, originalTokens, keptTokens, err := s.codec.TruncateTokens(text, s.config.EmbeddingTokenLimit)
	if err != nil {
		return nil, err
	}
	if keptTokens < originalTokens {
		s.logger.Info("truncated text embedding input",
			"original_tokens", originalTokens, "truncated_tokens", keptTokens)
	}

	var vector []float32
	err = limits.WithTimeout(ctx, "embed-text", s.config.EmbeddingTimeout, func(ctx context.Context) error {
		var embedErr error
		vector, embedErr = s.text.EmbedText(ctx, truncated)
		return embedErr
	})
	if err != nil {
		return nil, err
	}

	if len(vector) == 0 {
		return nil, &ServiceError{Backend: "text-embedding", Err: ErrEmptyResult}
	}
	if len(vector) != s.config.EmbeddingDimensions {
		return nil, fmt.Errorf("%w: text backend returned %d, expected %d",
			ErrDimensionMismatch, len(vector), s.config.EmbeddingDimensions)
	}
	return vector, nil
}

// EmbedMultimodal truncates the context text to the backend's byte limit
// (never splitting a multi-byte character), calls the multimodal backend
// under its timeout, and verifies the result has dimension B.
func (s *EmbeddingService) EmbedMultimodal(ctx context.Context, media Media, contextText string) ([]float32, error) {
	truncated, err := limits.TruncateBytes(contextText, s.config.ContextByteLimit)
	if err != nil {
		return nil, err
	}
	if len(truncated) < len(contextText) {
		s.logger.Info("truncated multimodal context input",
			"original_bytes", len(contextText), "truncated_bytes", len(truncated))
	}

	var vector []float32
	err = limits.WithTimeout(ctx, "embed-multimodal", s.config.MultimodalTimeout, func(ctx context.Context) error {
		var embedErr error
		vector, embedErr = s.multimodal.EmbedMultimodal(ctx, media, truncated)
		return embedErr
	})
	if err != nil {
		return nil, err
	}

	if len(vector) == 0 {
		return nil, &ServiceError{Backend: "multimodal-embedding", Err: ErrEmptyResult}
	}
	if len(vector) != s.config.MultimodalDimensions {
		return nil, fmt.Errorf("%w: multimodal backend returned %d, expected %d",
			ErrDimensionMismatch, len(vector), s.config.MultimodalDimensions)
	}
	return vector, nil
}

// TextDimensions returns the configured text vector dimension (A).
func (s *EmbeddingService) TextDimensions() int { return s.config.EmbeddingDimensions }

// MultimodalDimensions returns the configured multimodal vector dimension (B).
func (s *EmbeddingService) MultimodalDimensions() int { return s.config.MultimodalDimensions }

// ContextByteLimit returns the multimodal backend's context byte limit.
func (s *EmbeddingService) ContextByteLimit() int { return s.config.ContextByteLimit }
