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
	"strings"
	"time"

	"github.com/poiesic/mosaic/ai"
	"github.com/poiesic/mosaic/core"
	"github.com/poiesic/mosaic/limits"
	"github.com/poiesic/mosaic/media"
)

// VideoProcessor splits a video into fixed-duration segments, transcribes
// each, and embeds segment media plus transcript in the multimodal vector
// space. The transcript text is the chunk content, which is what makes
// video segments full-text searchable.
type VideoProcessor struct {
	embeddings  *ai.EmbeddingService
	transcriber ai.Transcriber
	prober      media.Prober
	slicer      media.Slicer
	config      ProcessorConfig
	logger      *slog.Logger
}

var _ Processor = (*VideoProcessor)(nil)

// NewVideoProcessor creates a video processor.
func NewVideoProcessor(embeddings *ai.EmbeddingService, transcriber ai.Transcriber, prober media.Prober, slicer media.Slicer, config ProcessorConfig, logger *slog.Logger) (*VideoProcessor, error) {
	if embeddings == nil {
		return nil, ErrEmbeddingServiceRequired
	}
	if transcriber == nil {
		return nil, fmt.Errorf("transcriber is required")
	}
	if prober == nil || slicer == nil {
		return nil, fmt.Errorf("media prober and slicer are required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoProcessor{
		embeddings:  embeddings,
		transcriber: transcriber,
		prober:      prober,
		slicer:      slicer,
		config:      config,
		logger:      logger.With("processor", "video"),
	}, nil
}

// Kind identifies the content family.
func (p *VideoProcessor) Kind() core.ContentKind { return core.KindVideo }

// Process probes the video, slices it into VideoSegment-length pieces,
// and processes the segments on a bounded pool. Each segment runs under
// SegmentTimeout; transient call failures inside it are retried a bounded
// number of times before the segment counts as failed. When more than
// FailFastRatio of segments fail the whole document is an error and no
// drafts are returned.
func (p *VideoProcessor) Process(ctx context.Context, src Source) ([]core.ChunkDraft, error) {
	info, err := p.prober.Probe(ctx, src.Data, src.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("probing video: %w", err)
	}

	segments, err := media.Plan(info.Duration, p.config.VideoSegment)
	if err != nil {
		return nil, err
	}

	results, err := runSegments(ctx, segments, p.config.Concurrency, func(ctx context.Context, seg media.Segment) (core.ChunkDraft, error) {
		return p.processSegment(ctx, src, seg, len(segments))
	})
	if err != nil {
		return nil, err
	}

	for i, res := range results {
		if res.err != nil {
			p.logger.Warn("video segment failed",
				"path", src.Document.SourcePath, "segment", i, "err", res.err)
		}
	}

	drafts, failed := collectSegments(results)
	if float64(failed) > p.config.FailFastRatio*float64(len(segments)) {
		return nil, &PartialFailureError{Kind: core.KindVideo, Failed: failed, Total: len(segments)}
	}

	p.logger.Info("video processed",
		"path", src.Document.SourcePath, "duration", info.Duration,
		"segments", len(segments), "failed", failed)
	return drafts, nil
}

func (p *VideoProcessor) processSegment(ctx context.Context, src Source, seg media.Segment, total int) (core.ChunkDraft, error) {
	var draft core.ChunkDraft
	err := limits.WithTimeout(ctx, "video-segment", p.config.SegmentTimeout, func(ctx context.Context) error {
		data, err := p.slicer.Slice(ctx, src.Data, src.MIMEType, seg)
		if err != nil {
			return fmt.Errorf("slicing segment %d: %w", seg.Index, err)
		}
		segMedia := ai.Media{Data: data, MIMEType: src.MIMEType}

		var transcript *ai.Transcript
		err = p.config.retryCall(ctx, func() error {
			var callErr error
			transcript, callErr = p.transcriber.Transcribe(ctx, segMedia)
			return callErr
		})
		if err != nil {
			return fmt.Errorf("transcribing segment %d: %w", seg.Index, err)
		}

		var vector []float32
		err = p.config.retryCall(ctx, func() error {
			var callErr error
			vector, callErr = p.embeddings.EmbedMultimodal(ctx, segMedia, transcript.Text)
			return callErr
		})
		if err != nil {
			return fmt.Errorf("embedding segment %d: %w", seg.Index, err)
		}

		content := transcript.Text
		if strings.TrimSpace(content) == "" {
			content = silentSegmentContent
		}

		draft = core.ChunkDraft{
			ChunkIndex: seg.Index,
			Content:    content,
			Metadata: core.ChunkMetadata{
				ChunkIndex:    seg.Index,
				SegmentIndex:  seg.Index,
				StartOffset:   seg.Start.Seconds(),
				EndOffset:     seg.End.Seconds(),
				Duration:      seg.Duration().Seconds(),
				TotalSegments: total,
				Transcript: &core.TranscriptInfo{
					Language:  transcript.Language,
					Model:     transcript.Model,
					Timestamp: time.Now().UTC(),
					HasAudio:  transcript.HasAudio,
				},
			},
			EmbeddingType:       core.EmbeddingMultimodal,
			MultimodalEmbedding: vector,
		}
		return nil
	})
	return draft, err
}
