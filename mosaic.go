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


// Package mosaic wires the ingestion service together: database backend,
// repositories, AI provider, and the ingestion pipeline.
package mosaic

import (
	"context"
	"log/slog"

	"github.com/poiesic/mosaic/ai"
	"github.com/poiesic/mosaic/ai/openai"
	"github.com/poiesic/mosaic/blob"
	"github.com/poiesic/mosaic/config"
	"github.com/poiesic/mosaic/ingest"
	"github.com/poiesic/mosaic/limits"
	"github.com/poiesic/mosaic/media"
	"github.com/poiesic/mosaic/storage"
	"github.com/poiesic/mosaic/storage/postgres"
)

// Service is the assembled ingestion service.
type Service struct {
	backend   *postgres.Backend
	documents storage.DocumentRepository
	chunks    storage.ChunkRepository
	provider  ai.Provider
	pipeline  *ingest.Pipeline
	logger    *slog.Logger
}

// NewService builds the full service from configuration: connection pool,
// repositories, AI backends, media tooling, processors, and the pipeline.
// Close must be called to release the pool.
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := postgres.Connect(ctx, cfg.Postgres())
	if err != nil {
		return nil, err
	}
	if err := backend.AutoMigrate(); err != nil {
		backend.Close()
		return nil, err
	}

	docRepo, err := postgres.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	chunkRepo, err := postgres.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	aiCfg := cfg.AI()
	provider, err := openai.NewProvider(aiCfg)
	if err != nil {
		backend.Close()
		return nil, err
	}

	codec, err := limits.NewTokenCodec()
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	embeddings, err := ai.NewEmbeddingService(provider.Embedder(), provider.MultimodalEmbedder(), codec, aiCfg)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	store, err := blob.NewFSStore(cfg.StorageRoot)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	procCfg := cfg.Processor()
	prober := media.NewFFProber()
	slicer := media.NewFFSlicer()

	docProc, err := ingest.NewDocumentProcessor(embeddings, codec, procCfg, nil)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}
	videoProc, err := ingest.NewVideoProcessor(embeddings, provider.Transcriber(), prober, slicer, procCfg, nil)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}
	audioProc, err := ingest.NewAudioProcessor(embeddings, provider.Transcriber(), prober, slicer, procCfg, nil)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}
	imageProc, err := ingest.NewImageProcessor(embeddings, provider.ImageAnalyzer(), procCfg, nil)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	router, err := ingest.NewRouter(docProc, videoProc, audioProc, imageProc)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	pipeline, err := ingest.NewPipeline(docRepo, chunkRepo, router, store, procCfg)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:   backend,
		documents: docRepo,
		chunks:    chunkRepo,
		provider:  provider,
		pipeline:  pipeline,
		logger:    slog.Default().With("component", "service"),
	}, nil
}

// Pipeline returns the ingestion entry point.
func (s *Service) Pipeline() *ingest.Pipeline { return s.pipeline }

// Documents returns the document repository.
func (s *Service) Documents() storage.DocumentRepository { return s.documents }

// Chunks returns the chunk repository.
func (s *Service) Chunks() storage.ChunkRepository { return s.chunks }

// Close releases the AI provider and the connection pool. The service
// must not be used afterwards.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing database backend", "err", err)
		return err
	}
	return nil
}
