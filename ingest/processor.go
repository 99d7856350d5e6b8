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
	"time"

	"github.com/poiesic/mosaic/core"
	"github.com/poiesic/mosaic/limits"
)

// Source is one file handed to a processor: the document record, the raw
// payload, and the MIME type the router resolved.
type Source struct {
	Document *core.Document
	Data     []byte
	MIMEType string
}

// Processor converts one file into a sequence of chunk drafts. Processors
// never touch storage or mutate the document record; persistence and
// status transitions belong to the Pipeline.
// Implementations must be thread-safe for concurrent use.
type Processor interface {
	// Kind identifies which content family the processor handles.
	Kind() core.ContentKind

	// Process converts the source into zero or more chunk drafts,
	// returning a typed error on failure.
	Process(ctx context.Context, src Source) ([]core.ChunkDraft, error)
}

// ProcessorConfig carries the policy knobs shared by the processors.
// All values are externally supplied; processors never read environment
// state directly.
type ProcessorConfig struct {
	// ChunkSize is the token length of each document chunk.
	ChunkSize int

	// ChunkOverlap is how many tokens adjacent document chunks share.
	ChunkOverlap int

	// VideoSegment is the fixed duration of each video segment.
	VideoSegment time.Duration

	// AudioSegment is the fixed duration of each audio segment.
	AudioSegment time.Duration

	// SegmentTimeout bounds the whole of one segment's processing,
	// transcription and embedding included.
	SegmentTimeout time.Duration

	// AnalysisTimeout bounds each image analysis pass.
	AnalysisTimeout time.Duration

	// FailFastRatio is the fraction of failed segments above which the
	// whole document is reported as an error.
	FailFastRatio float64

	// Concurrency is the worker pool size for segment-level work.
	Concurrency int

	// MaxCallAttempts bounds retries of transient external-call failures.
	MaxCallAttempts int

	// RetryBaseDelay is the initial backoff delay between retry attempts.
	RetryBaseDelay time.Duration

	// AudioMultimodal enables a multimodal embedding over audio segments
	// in addition to the text embedding of the transcript.
	AudioMultimodal bool
}

// DefaultProcessorConfig returns the default processing policy.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		ChunkSize:       1000,
		ChunkOverlap:    200,
		VideoSegment:    30 * time.Second,
		AudioSegment:    60 * time.Second,
		SegmentTimeout:  120 * time.Second,
		AnalysisTimeout: 60 * time.Second,
		FailFastRatio:   0.5,
		Concurrency:     2,
		MaxCallAttempts: 3,
		RetryBaseDelay:  500 * time.Millisecond,
	}
}

// Validate checks processing policy invariants.
func (c *ProcessorConfig) Validate() error {
	if c.ChunkSize < 1 {
		return fmt.Errorf("processor config: ChunkSize must be at least 1")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("processor config: ChunkOverlap must be in [0, ChunkSize)")
	}
	if c.VideoSegment <= 0 || c.AudioSegment <= 0 {
		return fmt.Errorf("processor config: segment durations must be positive")
	}
	if c.SegmentTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("processor config: timeouts must be positive")
	}
	if c.FailFastRatio <= 0 || c.FailFastRatio > 1 {
		return fmt.Errorf("processor config: FailFastRatio must be in (0, 1]")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("processor config: Concurrency must be at least 1")
	}
	if c.MaxCallAttempts < 1 {
		return fmt.Errorf("processor config: MaxCallAttempts must be at least 1")
	}
	return nil
}

// retryCall retries op with bounded backoff; fatal errors abort on the
// first attempt.
func (c *ProcessorConfig) retryCall(ctx context.Context, op func() error) error {
	return limits.RetryWithBackoff(ctx, op, c.MaxCallAttempts, c.RetryBaseDelay)
}
