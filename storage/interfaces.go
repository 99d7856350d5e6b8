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


package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/poiesic/mosaic/core"
)

// DocumentRepository provides operations for managing document records.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// Create persists a new document. A zero ID is replaced with a
	// generated one; CreatedAt is set if zero. Returns the stored document.
	Create(ctx context.Context, doc *core.Document) (*core.Document, error)

	// Get retrieves a document by ID.
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*core.Document, error)

	// GetByPath retrieves the document a user owns at the given source path.
	// Returns ErrNotFound if it doesn't exist.
	GetByPath(ctx context.Context, userID, sourcePath string) (*core.Document, error)

	// UpdateStatus transitions a document's status, recording an error
	// summary when status is StatusError and stamping ProcessedAt on
	// terminal states. Returns ErrNotFound if the document doesn't exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status core.DocumentStatus, errorMessage string) error

	// SetChecksum records the source content digest observed at fetch time.
	SetChecksum(ctx context.Context, id uuid.UUID, checksum string) error

	// Delete removes a document and, through the owning relationship, all
	// of its chunks.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChunkRepository provides operations for persisting processor output.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// CreateBatch persists all chunk drafts for one document in a single
	// transaction: either every row is written or none is. Drafts are
	// validated (at least one embedding, non-empty content) before any
	// connection is acquired; chunk_index follows draft order. Rows are
	// scoped by userID for tenant isolation.
	CreateBatch(ctx context.Context, documentID uuid.UUID, userID string, drafts []core.ChunkDraft) ([]*core.Chunk, error)

	// GetByDocument retrieves a document's chunks ordered by chunk_index.
	GetByDocument(ctx context.Context, documentID uuid.UUID) ([]*core.Chunk, error)

	// CountByDocument returns the number of persisted chunks for a document.
	CountByDocument(ctx context.Context, documentID uuid.UUID) (int64, error)

	// DeleteByDocument removes a document's whole chunk set. Reprocessing
	// a document deletes and recreates its chunks; they are never updated
	// in place.
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
}
