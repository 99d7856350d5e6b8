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
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"

	"github.com/poiesic/mosaic/core"
)

// documentRow is the gorm mapping for the documents table.
type documentRow struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID       string     `gorm:"size:100;not null;uniqueIndex:idx_documents_user_path"`
	SourcePath   string     `gorm:"size:1000;not null;uniqueIndex:idx_documents_user_path"`
	ContentType  string     `gorm:"size:100"`
	Checksum     string     `gorm:"size:32"`
	Status       string     `gorm:"size:20;not null;default:'pending'"`
	ErrorMessage string     `gorm:"type:text"`
	ProcessedAt  *time.Time ``
	CreatedAt    time.Time  ``
}

func (documentRow) TableName() string { return "documents" }

// chunkRow is the gorm mapping for the chunks table. Vector dimensions are
// enforced by the embedding service before rows reach this layer, so the
// columns stay untyped vectors and survive model-dimension changes.
type chunkRow struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey"`
	DocumentID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_chunks_document_index"`
	UserID              string           `gorm:"size:100;not null;index"`
	ChunkIndex          int              `gorm:"not null;uniqueIndex:idx_chunks_document_index"`
	Content             string           `gorm:"type:text;not null"`
	Context             *string          `gorm:"type:text"`
	Metadata            datatypes.JSON   `gorm:"type:jsonb"`
	EmbeddingType       string           `gorm:"size:20;not null"`
	TextEmbedding       *pgvector.Vector `gorm:"type:vector"`
	MultimodalEmbedding *pgvector.Vector `gorm:"type:vector"`
	CreatedAt           time.Time        ``

	// chunks are cascade-deleted with their document.
	Document *documentRow `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

func (chunkRow) TableName() string { return "chunks" }

func documentToRow(doc *core.Document) *documentRow {
	return &documentRow{
		ID:           doc.ID,
		UserID:       doc.UserID,
		SourcePath:   doc.SourcePath,
		ContentType:  doc.ContentType,
		Checksum:     doc.Checksum,
		Status:       string(doc.Status),
		ErrorMessage: doc.ErrorMessage,
		ProcessedAt:  doc.ProcessedAt,
		CreatedAt:    doc.CreatedAt,
	}
}

func documentFromRow(row *documentRow) *core.Document {
	return &core.Document{
		ID:           row.ID,
		UserID:       row.UserID,
		SourcePath:   row.SourcePath,
		ContentType:  row.ContentType,
		Checksum:     row.Checksum,
		Status:       core.DocumentStatus(row.Status),
		ErrorMessage: row.ErrorMessage,
		ProcessedAt:  row.ProcessedAt,
		CreatedAt:    row.CreatedAt,
	}
}

func chunkToRow(chunk *core.Chunk) (*chunkRow, error) {
	metadata, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshaling chunk metadata: %w", err)
	}

	row := &chunkRow{
		ID:            chunk.ID,
		DocumentID:    chunk.DocumentID,
		UserID:        chunk.UserID,
		ChunkIndex:    chunk.ChunkIndex,
		Content:       chunk.Content,
		Metadata:      datatypes.JSON(metadata),
		EmbeddingType: string(chunk.EmbeddingType),
		CreatedAt:     chunk.CreatedAt,
	}
	if chunk.Context != "" {
		ctx := chunk.Context
		row.Context = &ctx
	}
	if len(chunk.TextEmbedding) > 0 {
		vec := pgvector.NewVector(chunk.TextEmbedding)
		row.TextEmbedding = &vec
	}
	if len(chunk.MultimodalEmbedding) > 0 {
		vec := pgvector.NewVector(chunk.MultimodalEmbedding)
		row.MultimodalEmbedding = &vec
	}
	return row, nil
}

func chunkFromRow(row *chunkRow) (*core.Chunk, error) {
	chunk := &core.Chunk{
		ID:            row.ID,
		DocumentID:    row.DocumentID,
		UserID:        row.UserID,
		ChunkIndex:    row.ChunkIndex,
		Content:       row.Content,
		EmbeddingType: core.EmbeddingType(row.EmbeddingType),
		CreatedAt:     row.CreatedAt,
	}
	if row.Context != nil {
		chunk.Context = *row.Context
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}
	if row.TextEmbedding != nil {
		chunk.TextEmbedding = row.TextEmbedding.Slice()
	}
	if row.MultimodalEmbedding != nil {
		chunk.MultimodalEmbedding = row.MultimodalEmbedding.Slice()
	}
	return chunk, nil
}
