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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/poiesic/mosaic/core"
	"github.com/poiesic/mosaic/storage"
)

// DocumentRepository implements storage.DocumentRepository.
type DocumentRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a document repository over the backend.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &DocumentRepository{
		backend: backend,
		logger:  slog.Default().With("component", "document-repository"),
	}, nil
}

// Create persists a new document.
func (r *DocumentRepository) Create(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	stored := *doc
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	err := r.backend.WithConn(ctx, func(conn *gorm.DB) error {
		createErr := conn.Create(documentToRow(&stored)).Error
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: document at %s for user %s",
				storage.ErrDuplicateKey, stored.SourcePath, stored.UserID)
		}
		return createErr
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Get retrieves a document by ID.
func (r *DocumentRepository) Get(ctx context.Context, id uuid.UUID) (*core.Document, error) {
	var row documentRow
	err := r.backend.WithConn(ctx, func(conn *gorm.DB) error {
		result := conn.First(&row, "id = ?", id)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: document %s", storage.ErrNotFound, id)
		}
		return result.Error
	})
	if err != nil {
		return nil, err
	}
	return documentFromRow(&row), nil
}

// GetByPath retrieves the document a user owns at the given source path.
func (r *DocumentRepository) GetByPath(ctx context.Context, userID, sourcePath string) (*core.Document, error) {
	var row documentRow
	err := r.backend.WithConn(ctx, func(conn *gorm.DB) error {
		result := conn.First(&row, "user_id = ? AND source_path = ?", userID, sourcePath)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: document at %s", storage.ErrNotFound, sourcePath)
		}
		return result.Error
	})
	if err != nil {
		return nil, err
	}
	return documentFromRow(&row), nil
}

// UpdateStatus transitions a document's status.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status core.DocumentStatus, errorMessage string) error {
	if err := core.ValidateStatus(status); err != nil {
		return err
	}

	updates := map[string]any{
		"status":        string(status),
		"error_message": errorMessage,
	}
	if status == core.StatusCompleted || status == core.StatusError {
		now := time.Now().UTC()
		updates["processed_at"] = &now
	}

	return r.backend.WithConn(ctx, func(conn *gorm.DB) error {
		result := conn.Model(&documentRow{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: document %s", storage.ErrNotFound, id)
		}
		return nil
	})
}

// SetChecksum records the source content digest.
func (r *DocumentRepository) SetChecksum(ctx context.Context, id uuid.UUID, checksum string) error {
	return r.backend.WithConn(ctx, func(conn *gorm.DB) error {
		result := conn.Model(&documentRow{}).Where("id = ?", id).Update("checksum", checksum)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: document %s", storage.ErrNotFound, id)
		}
		return nil
	})
}

// Delete removes a document and all of its chunks in one transaction.
// The chunk delete is explicit so backends without enforced foreign keys
// behave identically to ones with ON DELETE CASCADE.
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.backend.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&chunkRow{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&documentRow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: document %s", storage.ErrNotFound, id)
		}
		return nil
	})
}
