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

import "context"

// Embedder generates text-space vector embeddings.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The input is expected to already satisfy the backend's token limit;
	// truncation is the EmbeddingService's responsibility, not the
	// backend's. Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// MultimodalEmbedder generates cross-modal vector embeddings from media
// plus optional context text.
// Implementations must be thread-safe for concurrent use.
type MultimodalEmbedder interface {
	// EmbedMultimodal generates a vector embedding keyed on the media
	// content and the accompanying context text. The context text is
	// expected to already satisfy the backend's byte limit.
	EmbedMultimodal(ctx context.Context, media Media, contextText string) ([]float32, error)
}

// Transcriber converts the audio track of a media segment into text.
// Implementations must be thread-safe for concurrent use.
type Transcriber interface {
	// Transcribe produces a transcript for one media segment. A segment
	// with no audio track returns a Transcript with HasAudio=false and
	// empty Text rather than an error.
	Transcribe(ctx context.Context, segment Media) (*Transcript, error)
}

// ImageAnalyzer performs the two analysis passes the image processor needs.
// Implementations must be thread-safe for concurrent use.
type ImageAnalyzer interface {
	// Describe produces a comprehensive, detailed description of the image.
	// This pass is required; its output becomes the chunk content.
	Describe(ctx context.Context, image Media) (string, error)

	// Concepts produces a concise, search-optimized description listing the
	// key concepts visible in the image. This pass is non-critical; callers
	// degrade gracefully when it fails.
	Concepts(ctx context.Context, image Media) (string, error)
}

// Provider aggregates the AI backends for convenient initialization.
type Provider interface {
	// Embedder returns the text embedding backend.
	Embedder() Embedder

	// MultimodalEmbedder returns the multimodal embedding backend.
	MultimodalEmbedder() MultimodalEmbedder

	// Transcriber returns the transcription backend.
	Transcriber() Transcriber

	// ImageAnalyzer returns the image analysis backend.
	ImageAnalyzer() ImageAnalyzer

	// Close releases resources held by the provider.
	Close() error
}
