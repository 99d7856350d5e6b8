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
	"sync/atomic"

	"gorm.io/driver/sqlite"

	"github.com/poiesic/mosaic/storage"
)

var memoryDBSeq atomic.Int64

// NewMemoryBackend creates an in-memory backend plus repositories for
// testing. SQLite stores the vector and jsonb columns as text, which is
// sufficient for everything but similarity search, and search is not this
// layer's concern. Caller must close the backend when done.
func NewMemoryBackend(cfg Config) (*Backend, storage.DocumentRepository, storage.ChunkRepository, error) {
	// Unique shared-cache DSN per backend so pooled connections see one
	// database while separate backends stay isolated.
	dsn := fmt.Sprintf("file:mosaic-%d?mode=memory&cache=shared", memoryDBSeq.Add(1))

	backend, err := Open(context.Background(), sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := backend.AutoMigrate(); err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	docRepo, err := NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	chunkRepo, err := NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	return backend, docRepo, chunkRepo, nil
}
