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


package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/poiesic/mosaic/core"
	"github.com/poiesic/mosaic/storage"
)

// ChunkRepository implements storage.ChunkRepository. It is the pipeline's
// storage writer: all chunk rows for one document go in as a single
// transactional batch, never partially.
type ChunkRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a chunk repository over the backend.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &ChunkRepository{
		backend: backend,
		logger:  slog.Default().With("component", "chunk-repository"),
	}, nil
}

// CreateBatch persists all drafts for one document atomically. Drafts are
// validated before any connection is acquired, so invalid input never
// costs pool capacity.
func (r *ChunkRepository) CreateBatch(ctx context.Context, documentID uuid.UUID, userID string, drafts []core.ChunkDraft) ([]*core.Chunk, error) {
	if documentID == uuid.Nil {
		return nil, fmt.Errorf("%w: document id required", core.ErrInvalidChunk)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidChunk, core.ErrEmptyUserID)
	}
	if len(drafts) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	chunks := make([]*core.Chunk, len(drafts))
	rows := make([]*chunkRow, len(drafts))
	for i := range drafts {
		draft := drafts[i]
		draft.ChunkIndex = i
		draft.Metadata.ChunkIndex = i
		if err := core.ValidateDraft(&draft); err != nil {
			return nil, fmt.Errorf("draft %d: %w", i, err)
		}

		chunks[i] = &core.Chunk{
			ID:                  uuid.New(),
			DocumentID:          documentID,
			UserID:              userID,
			ChunkIndex:          i,
			Content:             draft.Content,
			Context:             draft.Context,
			Metadata:            draft.Metadata,
			EmbeddingType:       draft.EmbeddingType,
			TextEmbedding:       draft.TextEmbedding,
			MultimodalEmbedding: draft.MultimodalEmbedding,
			CreatedAt:           now,
		}

		row, err := chunkToRow(chunks[i])
		if err != nil {
			return nil, fmt.Errorf("draft %d: %w", i, err)
		}
		rows[i] = row
	}

	err := r.backend.WithTx(ctx, func(tx *gorm.DB) error {
		// Single multi-row insert; all or nothing for the document.
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("persisted chunk batch", "document_id", documentID, "chunks", len(chunks))
	return chunks, nil
}

// GetByDocument retrieves a document's chunks ordered by chunk_index.
func (r *ChunkRepository) GetByDocument(ctx context.Context, documentID uuid.UUID) ([]*core.Chunk, error) {
	var rows []*chunkRow
	err := r.backend.WithConn(ctx, func(conn *gorm.DB) error {
		return conn.Where("document_id = ?", documentID).Order("chunk_index ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	chunks := make([]*core.Chunk, len(rows))
	for i, row := range rows {
		chunk, err := chunkFromRow(row)
		if err != nil {
			return nil, err
		}
		chunks[i] = chunk
	}
	return chunks, nil
}

// CountByDocument returns the number of persisted chunks for a document.
func (r *ChunkRepository) CountByDocument(ctx context.Context, documentID uuid.UUID) (int64, error) {
	var count int64
	err := r.backend.WithConn(ctx, func(conn *gorm.DB) error {
		return conn.Model(&chunkRow{}).Where("document_id = ?", documentID).Count(&count).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByDocument removes a document's whole chunk set.
func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	return r.backend.WithConn(ctx, func(conn *gorm.DB) error {
		return conn.Where("document_id = ?", documentID).Delete(&chunkRow{}).Error
	})
}
