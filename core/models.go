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

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// DocumentStatus tracks a document through the ingestion lifecycle.
type DocumentStatus string

const (
	// StatusPending means the upload has been observed but processing has not started.
	StatusPending DocumentStatus = "pending"
	// StatusProcessing means the pipeline is currently working on the document.
	StatusProcessing DocumentStatus = "processing"
	// StatusCompleted means all chunks were persisted successfully.
	StatusCompleted DocumentStatus = "completed"
	// StatusError means processing failed; ErrorMessage carries a summary.
	StatusError DocumentStatus = "error"
)

// ContentKind identifies which processor handles a document.
type ContentKind string

const (
	KindDocument ContentKind = "document"
	KindVideo    ContentKind = "video"
	KindAudio    ContentKind = "audio"
	KindImage    ContentKind = "image"
)

// EmbeddingType tags which embedding strategy produced a chunk.
// It is descriptive only; either vector field may be populated regardless.
type EmbeddingType string

const (
	EmbeddingText       EmbeddingType = "text"
	EmbeddingMultimodal EmbeddingType = "multimodal"
)

// Document represents one uploaded file tracked through ingestion.
// It is created when an upload event is first observed and mutated only
// by the ingestion pipeline, never by processors directly.
type Document struct {
	ID           uuid.UUID
	UserID       string
	SourcePath   string // object path within the upload bucket
	ContentType  string // declared MIME type from the storage event
	Checksum     string // blake2b-64 of the source bytes, hex encoded
	Status       DocumentStatus
	ErrorMessage string
	ProcessedAt  *time.Time
	CreatedAt    time.Time
}

// TranscriptInfo describes how a segment transcript was produced.
type TranscriptInfo struct {
	Language  string    `json:"language,omitempty"`
	Model     string    `json:"model,omitempty"`
	Timestamp time.Time `json:"timestamp"` // when the transcript was generated
	HasAudio  bool      `json:"has_audio"`
}

// ChunkMetadata holds content-type-specific chunk attributes.
// Only the fields relevant to the producing processor are populated.
type ChunkMetadata struct {
	ChunkIndex int    `json:"chunk_index"`
	DocType    string `json:"doc_type,omitempty"`
	Section    string `json:"section,omitempty"`
	PageNumber int    `json:"page_number,omitempty"`

	// Segment fields (video/audio).
	SegmentIndex  int             `json:"segment_index,omitempty"`
	StartOffset   float64         `json:"start_offset,omitempty"` // seconds
	EndOffset     float64         `json:"end_offset,omitempty"`   // seconds
	Duration      float64         `json:"duration,omitempty"`     // seconds
	TotalSegments int             `json:"total_segments,omitempty"`
	Transcript    *TranscriptInfo `json:"transcript,omitempty"`

	// Audio characteristics, when the probe supplies them.
	SampleRate int `json:"sample_rate,omitempty"`
	Channels   int `json:"channels,omitempty"`
}

// ChunkDraft is processor output prior to persistence. The storage writer
// assigns IDs and timestamps; drafts carry everything else.
type ChunkDraft struct {
	ChunkIndex          int
	Content             string
	Context             string // optional concise secondary payload
	Metadata            ChunkMetadata
	EmbeddingType       EmbeddingType
	TextEmbedding       []float32 // nil when not computed
	MultimodalEmbedding []float32 // nil when not computed
}

// Chunk is one persisted unit of processed content. Chunks are immutable
// after creation; reprocessing a document replaces its whole chunk set.
type Chunk struct {
	ID                  uuid.UUID
	DocumentID          uuid.UUID
	UserID              string
	ChunkIndex          int
	Content             string
	Context             string
	Metadata            ChunkMetadata
	EmbeddingType       EmbeddingType
	TextEmbedding       []float32
	MultimodalEmbedding []float32
	CreatedAt           time.Time
}

// HasEmbedding reports whether at least one vector field is populated.
// Every persisted chunk must satisfy this.
func (d *ChunkDraft) HasEmbedding() bool {
	return len(d.TextEmbedding) > 0 || len(d.MultimodalEmbedding) > 0
}

// Checksum computes a deterministic blake2b-64 digest of content, hex encoded.
// Identical source bytes always produce identical checksums, which lets
// operators spot re-uploads of the same object.
func Checksum(data []byte) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
