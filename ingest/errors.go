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
	"errors"
	"fmt"

	"github.com/poiesic/mosaic/core"
)

var (
	// ErrDocumentRepositoryRequired is returned when a nil document repository is provided.
	ErrDocumentRepositoryRequired = errors.New("document repository is required")

	// ErrChunkRepositoryRequired is returned when a nil chunk repository is provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository is required")

	// ErrBlobStoreRequired is returned when a nil blob store is provided.
	ErrBlobStoreRequired = errors.New("blob store is required")

	// ErrEmbeddingServiceRequired is returned when a nil embedding service is provided.
	ErrEmbeddingServiceRequired = errors.New("embedding service is required")

	// ErrRouterRequired is returned when a nil router is provided.
	ErrRouterRequired = errors.New("router is required")

	// ErrEmptyPayload is returned when an uploaded object has no content.
	ErrEmptyPayload = errors.New("payload is empty")
)

// UnsupportedContentTypeError reports a file the router cannot dispatch.
// It is fatal: the pipeline marks the document as errored without any
// retry attempt.
type UnsupportedContentTypeError struct {
	ContentType string
	Path        string
}

func (e *UnsupportedContentTypeError) Error() string {
	return fmt.Sprintf("unsupported content type %q for %s", e.ContentType, e.Path)
}

// Retryable marks the error fatal; resending the same file cannot succeed.
func (e *UnsupportedContentTypeError) Retryable() bool { return false }

// PartialFailureError aggregates segment or pass failures for one document.
// Processors return it when the failed fraction crosses the fail-fast
// threshold; no chunks are persisted for the document in that case.
type PartialFailureError struct {
	Kind   core.ContentKind
	Failed int
	Total  int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s processing failed %d of %d segments", e.Kind, e.Failed, e.Total)
}

// Retryable marks the aggregate fatal; the per-call retries already ran
// inside the processor.
func (e *PartialFailureError) Retryable() bool { return false }
