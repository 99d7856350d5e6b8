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


package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/mosaic/ai"
	"github.com/poiesic/mosaic/core"
	"github.com/poiesic/mosaic/limits"
)

// ImageProcessor runs two independent analysis passes over one image and
// produces exactly one chunk. The comprehensive description is required;
// the concise concept pass only improves the multimodal embedding and
// degrades gracefully. Text search needs the text embedding of the
// description because a multimodal vector alone under-weights literal
// text rendered inside the image.
type ImageProcessor struct {
	embeddings *ai.EmbeddingService
	analyzer   ai.ImageAnalyzer
	config     ProcessorConfig
	logger     *slog.Logger
}

var _ Processor = (*ImageProcessor)(nil)

// NewImageProcessor creates an image processor.
func NewImageProcessor(embeddings *ai.EmbeddingService, analyzer ai.ImageAnalyzer, config ProcessorConfig, logger *slog.Logger) (*ImageProcessor, error) {
	if embeddings == nil {
		return nil, ErrEmbeddingServiceRequired
	}
	if analyzer == nil {
		return nil, fmt.Errorf("image analyzer is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageProcessor{
		embeddings: embeddings,
		analyzer:   analyzer,
		config:     config,
		logger:     logger.With("processor", "image"),
	}, nil
}

// Kind identifies the content family.
func (p *ImageProcessor) Kind() core.ContentKind { return core.KindImage }

// Process produces one chunk per image. A comprehensive-pass or text
// embedding failure is fatal after bounded retries. A concept-pass or
// multimodal embedding failure is logged and the chunk is persisted with
// an empty context and no multimodal vector.
func (p *ImageProcessor) Process(ctx context.Context, src Source) ([]core.ChunkDraft, error) {
	image := ai.Media{Data: src.Data, MIMEType: src.MIMEType}

	var description string
	err := p.config.retryCall(ctx, func() error {
		return limits.WithTimeout(ctx, "image-describe", p.config.AnalysisTimeout, func(ctx context.Context) error {
			var callErr error
			description, callErr = p.analyzer.Describe(ctx, image)
			return callErr
		})
	})
	if err != nil {
		return nil, fmt.Errorf("describing image: %w", err)
	}
	if description == "" {
		return nil, fmt.Errorf("describing image: empty description")
	}

	var textVector []float32
	err = p.config.retryCall(ctx, func() error {
		var callErr error
		textVector, callErr = p.embeddings.EmbedText(ctx, description)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("embedding description: %w", err)
	}

	concepts, multimodalVector := p.conceptPass(ctx, src, image)

	draft := core.ChunkDraft{
		Content:             description,
		Context:             concepts,
		Metadata:            core.ChunkMetadata{DocType: "image"},
		EmbeddingType:       core.EmbeddingMultimodal,
		TextEmbedding:       textVector,
		MultimodalEmbedding: multimodalVector,
	}
	if multimodalVector == nil {
		draft.EmbeddingType = core.EmbeddingText
	}
	return []core.ChunkDraft{draft}, nil
}

// conceptPass runs the non-critical concept analysis plus the multimodal
// embedding. Either failing returns empty results; the error is logged,
// never raised.
func (p *ImageProcessor) conceptPass(ctx context.Context, src Source, image ai.Media) (string, []float32) {
	var concepts string
	err := p.config.retryCall(ctx, func() error {
		return limits.WithTimeout(ctx, "image-concepts", p.config.AnalysisTimeout, func(ctx context.Context) error {
			var callErr error
			concepts, callErr = p.analyzer.Concepts(ctx, image)
			return callErr
		})
	})
	if err != nil {
		p.logger.Warn("concept pass failed, continuing without multimodal embedding",
			"path", src.Document.SourcePath, "err", err)
		return "", nil
	}

	// Truncate once so the persisted context is exactly the text the
	// multimodal backend saw.
	concepts, err = limits.TruncateBytes(concepts, p.embeddings.ContextByteLimit())
	if err != nil {
		p.logger.Warn("concept pass failed, continuing without multimodal embedding",
			"path", src.Document.SourcePath, "err", err)
		return "", nil
	}

	var vector []float32
	err = p.config.retryCall(ctx, func() error {
		var callErr error
		vector, callErr = p.embeddings.EmbedMultimodal(ctx, image, concepts)
		return callErr
	})
	if err != nil {
		p.logger.Warn("multimodal embedding failed, continuing with text embedding only",
			"path", src.Document.SourcePath, "err", err)
		return "", nil
	}

	return concepts, vector
}
