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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - UserID must not be empty
//   - SourcePath must not be empty
//   - Status must be a known value
//
// NOT validated (populated by the pipeline):
//   - Checksum (empty until the payload is fetched)
//   - ProcessedAt, ErrorMessage
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.UserID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyUserID)
	}

	if doc.SourcePath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptySourcePath)
	}

	if err := ValidateStatus(doc.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateDraft validates a ChunkDraft before it may be persisted.
//
// Validation rules:
//   - Content must not be empty
//   - ChunkIndex must not be negative
//   - at least one embedding vector must be populated
//
// NOT validated (assigned by the storage writer):
//   - chunk ID, document ID, timestamps
func ValidateDraft(draft *ChunkDraft) error {
	if draft == nil {
		return fmt.Errorf("%w: draft is nil", ErrInvalidChunk)
	}

	if draft.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if draft.ChunkIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeIndex)
	}

	if !draft.HasEmbedding() {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNoEmbedding)
	}

	return nil
}

// ValidateStatus validates that a DocumentStatus has a known value.
func ValidateStatus(status DocumentStatus) error {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusError:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
}
