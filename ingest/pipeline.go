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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/mosaic/blob"
	"github.com/poiesic/mosaic/core"
	"github.com/poiesic/mosaic/limits"
	"github.com/poiesic/mosaic/storage"
)

// Event is one storage-change notification: a file appeared or was
// replaced in the upload bucket.
type Event struct {
	// Bucket is the storage bucket or container holding the object.
	Bucket string `json:"bucket"`

	// Path is the object path within the bucket. The first path segment
	// is the owning user's ID unless UserID is set explicitly.
	Path string `json:"path"`

	// ContentType is the MIME type declared by the uploader.
	ContentType string `json:"content_type"`

	// UserID overrides the owner derived from Path.
	UserID string `json:"user_id,omitempty"`
}

// ownerOf resolves the owning user for an event.
func (e Event) ownerOf() string {
	if e.UserID != "" {
		return e.UserID
	}
	if i := strings.Index(e.Path, "/"); i > 0 {
		return e.Path[:i]
	}
	return ""
}

// Pipeline is the ingestion entry point. It owns document records and
// their status transitions; processors only ever see a read-only Source.
type Pipeline struct {
	documents storage.DocumentRepository
	chunks    storage.ChunkRepository
	router    *Router
	store     blob.Store
	config    ProcessorConfig
	logger    *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewPipeline creates the ingestion entry point.
func NewPipeline(documents storage.DocumentRepository, chunks storage.ChunkRepository, router *Router, store blob.Store, config ProcessorConfig, opts ...PipelineOption) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if router == nil {
		return nil, ErrRouterRequired
	}
	if store == nil {
		return nil, ErrBlobStoreRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		documents: documents,
		chunks:    chunks,
		router:    router,
		store:     store,
		config:    config,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "ingest-pipeline")
	return p, nil
}

// HandleEvent drives one file through routing, processing, and storage,
// and always leaves the document in a terminal state. The returned error
// mirrors what was recorded on the document; callers need it only for
// their own reporting.
func (p *Pipeline) HandleEvent(ctx context.Context, event Event) error {
	userID := event.ownerOf()
	if userID == "" {
		return fmt.Errorf("%w: no user in event path %q", core.ErrEmptyUserID, event.Path)
	}

	doc, err := p.resolveDocument(ctx, userID, event)
	if err != nil {
		return err
	}

	if err := p.documents.UpdateStatus(ctx, doc.ID, core.StatusProcessing, ""); err != nil {
		return err
	}

	if err := p.process(ctx, doc, event); err != nil {
		p.logger.Error("document processing failed",
			"document", doc.ID, "path", doc.SourcePath, "err", err)

		// The status write must survive the caller's cancellation, or the
		// document is stuck in processing forever.
		statusCtx := context.WithoutCancel(ctx)
		if statusErr := p.documents.UpdateStatus(statusCtx, doc.ID, core.StatusError, summarize(err)); statusErr != nil {
			p.logger.Error("failed to record error status",
				"document", doc.ID, "err", statusErr)
		}
		return err
	}

	return p.documents.UpdateStatus(ctx, doc.ID, core.StatusCompleted, "")
}

// resolveDocument finds the document for the event's path, creating it on
// first sight. Reprocessing an existing path reuses its record.
func (p *Pipeline) resolveDocument(ctx context.Context, userID string, event Event) (*core.Document, error) {
	doc, err := p.documents.GetByPath(ctx, userID, event.Path)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	created, err := p.documents.Create(ctx, &core.Document{
		UserID:      userID,
		SourcePath:  event.Path,
		ContentType: event.ContentType,
		Status:      core.StatusPending,
	})
	if errors.Is(err, storage.ErrDuplicateKey) {
		// A concurrent delivery of the same event won the create; reuse
		// its document instead of duplicating the (user, path) row.
		return p.documents.GetByPath(ctx, userID, event.Path)
	}
	return created, err
}

func (p *Pipeline) process(ctx context.Context, doc *core.Document, event Event) error {
	// Route before fetching; an unsupported type must fail without a
	// single retrieval or retry attempt.
	proc, err := p.router.Route(event.ContentType, event.Path)
	if err != nil {
		return err
	}

	var payload []byte
	err = p.config.retryCall(ctx, func() error {
		var readErr error
		payload, readErr = p.store.Read(ctx, event.Bucket, event.Path)
		return readErr
	})
	if err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			return fmt.Errorf("object vanished before processing: %w", err)
		}
		return fmt.Errorf("fetching payload: %w", err)
	}
	if len(payload) == 0 {
		return ErrEmptyPayload
	}

	if err := p.documents.SetChecksum(ctx, doc.ID, core.Checksum(payload)); err != nil {
		return err
	}

	drafts, err := proc.Process(ctx, Source{Document: doc, Data: payload, MIMEType: event.ContentType})
	if err != nil {
		return err
	}

	// Reprocessing replaces the chunk set; chunks are never updated in
	// place.
	if err := p.chunks.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("clearing stale chunks: %w", err)
	}

	if len(drafts) == 0 {
		p.logger.Info("document produced no chunks", "document", doc.ID, "path", doc.SourcePath)
		return nil
	}

	chunks, err := p.chunks.CreateBatch(ctx, doc.ID, doc.UserID, drafts)
	if err != nil {
		return fmt.Errorf("persisting chunks: %w", err)
	}

	p.logger.Info("document ingested",
		"document", doc.ID, "path", doc.SourcePath, "chunks", len(chunks))
	return nil
}

// summarize trims an error chain to a status-record-sized message. Users
// see document status, not raw backend detail.
func summarize(err error) string {
	msg, truncErr := limits.TruncateBytes(err.Error(), 500)
	if truncErr != nil {
		return err.Error()
	}
	return msg
}
