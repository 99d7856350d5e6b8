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

// AudioProcessor mirrors the video processor's segmentation and fail-fast
// policy for audio-only files. Transcripts are embedded in the text vector
// space; a multimodal embedding of the segment audio can be enabled per
// deployment with ProcessorConfig.AudioMultimodal.
type AudioProcessor struct {
	embeddings  *ai.EmbeddingService
	transcriber ai.Transcriber
	prober      media.Prober
	slicer      media.Slicer
	config      ProcessorConfig
	logger      *slog.Logger
}

var _ Processor = (*AudioProcessor)(nil)

// NewAudioProcessor creates an audio processor.
func NewAudioProcessor(embeddings *ai.EmbeddingService, transcriber ai.Transcriber, prober media.Prober, slicer media.Slicer, config ProcessorConfig, logger *slog.Logger) (*AudioProcessor, error) {
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
	return &AudioProcessor{
		embeddings:  embeddings,
		transcriber: transcriber,
		prober:      prober,
		slicer:      slicer,
		config:      config,
		logger:      logger.With("processor", "audio"),
	}, nil
}

// Kind identifies the content family.
func (p *AudioProcessor) Kind() core.ContentKind { return core.KindAudio }

// Process slices the audio into AudioSegment-length pieces and transcribes
// each under the same bounded pool, per-segment timeout, and fail-fast
// threshold as video. Audio characteristics from the probe are recorded in
// chunk metadata when available.
func (p *AudioProcessor) Process(ctx context.Context, src Source) ([]core.ChunkDraft, error) {
	info, err := p.prober.Probe(ctx, src.Data, src.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("probing audio: %w", err)
	}

	segments, err := media.Plan(info.Duration, p.config.AudioSegment)
	if err != nil {
		return nil, err
	}

	results, err := runSegments(ctx, segments, p.config.Concurrency, func(ctx context.Context, seg media.Segment) (core.ChunkDraft, error) {
		return p.processSegment(ctx, src, seg, len(segments), info)
	})
	if err != nil {
		return nil, err
	}

	for i, res := range results {
		if res.err != nil {
			p.logger.Warn("audio segment failed",
				"path", src.Document.SourcePath, "segment", i, "err", res.err)
		}
	}

	drafts, failed := collectSegments(results)
	if float64(failed) > p.config.FailFastRatio*float64(len(segments)) {
		return nil, &PartialFailureError{Kind: core.KindAudio, Failed: failed, Total: len(segments)}
	}

	p.logger.Info("audio processed",
		"path", src.Document.SourcePath, "duration", info.Duration,
		"segments", len(segments), "failed", failed)
	return drafts, nil
}

func (p *AudioProcessor) processSegment(ctx context.Context, src Source, seg media.Segment, total int, info *media.Info) (core.ChunkDraft, error) {
	var draft core.ChunkDraft
	err := limits.WithTimeout(ctx, "audio-segment", p.config.SegmentTimeout, func(ctx context.Context) error {
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

		content := transcript.Text
		if strings.TrimSpace(content) == "" {
			content = silentSegmentContent
		}

		var textVector []float32
		err = p.config.retryCall(ctx, func() error {
			var callErr error
			textVector, callErr = p.embeddings.EmbedText(ctx, content)
			return callErr
		})
		if err != nil {
			return fmt.Errorf("embedding segment %d: %w", seg.Index, err)
		}

		var multimodalVector []float32
		if p.config.AudioMultimodal {
			err = p.config.retryCall(ctx, func() error {
				var callErr error
				multimodalVector, callErr = p.embeddings.EmbedMultimodal(ctx, segMedia, transcript.Text)
				return callErr
			})
			if err != nil {
				return fmt.Errorf("multimodal embedding segment %d: %w", seg.Index, err)
			}
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
				SampleRate: info.SampleRate,
				Channels:   info.Channels,
			},
			EmbeddingType:       core.EmbeddingText,
			TextEmbedding:       textVector,
			MultimodalEmbedding: multimodalVector,
		}
		return nil
	})
	return draft, err
}
