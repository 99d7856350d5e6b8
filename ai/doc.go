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


// Package ai provides abstractions for the AI backends used by Mosaic.
//
// This package defines interfaces for the four external model services the
// ingestion pipeline coordinates, each with its own input limits and failure
// modes:
//
//   - Embedder: text-space vector embeddings (fixed dimension A)
//   - MultimodalEmbedder: cross-modal vector embeddings (fixed dimension B)
//   - Transcriber: speech-to-text over media segments
//   - ImageAnalyzer: descriptive and concept-focused image analysis
//   - Provider: aggregates all four for convenient initialization
//
// The EmbeddingService type wraps the two embedding interfaces with the
// policy the pipeline relies on: deterministic input truncation (token-based
// for text, byte-based for multimodal context), explicit per-call timeouts,
// and result-dimension verification. Processors call the service, never the
// raw backends, so the policy holds regardless of which implementation is
// plugged in.
//
// # Implementation Packages
//
//   - ai/openai: production implementation against OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles with injectable behavior
//
// Public constructors in ai/openai return interface types to prevent
// coupling to implementation details; mock constructors return concrete
// types so tests can inject behavior and assert call counts.
package ai
