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


package ingest_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/mosaic/ai"
	"github.com/poiesic/mosaic/ai/mock"
	"github.com/poiesic/mosaic/blob"
	"github.com/poiesic/mosaic/core"
	"github.com/poiesic/mosaic/ingest"
	"github.com/poiesic/mosaic/media"
	"github.com/poiesic/mosaic/storage"
	"github.com/poiesic/mosaic/storage/postgres"
)

type pipelineFixture struct {
	pipeline    *ingest.Pipeline
	documents   storage.DocumentRepository
	chunks      storage.ChunkRepository
	store       *blob.MemStore
	transcriber *mock.MockTranscriber
	analyzer    *mock.MockImageAnalyzer
	closeFn     func()
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	dbCfg := postgres.DefaultConfig("")
	dbCfg.MaxOpenConns = 4
	dbCfg.MaxIdleConns = 4
	backend, docRepo, chunkRepo, err := postgres.NewMemoryBackend(dbCfg)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	embeddings := newTestEmbeddings(t, mock.NewMockEmbedder(testTextDim), mock.NewMockMultimodalEmbedder(testMultimodalDim))
	transcriber := mock.NewMockTranscriber()
	analyzer := mock.NewMockImageAnalyzer()
	prober := &media.MockProber{Info: media.Info{Duration: 90 * time.Second, HasAudio: true, SampleRate: 48000, Channels: 2}}
	slicer := &media.MockSlicer{}

	cfg := fastProcessorConfig()
	codec := newCodec(t)

	docProc, err := ingest.NewDocumentProcessor(embeddings, codec, cfg, nil)
	require.NoError(t, err)
	videoProc, err := ingest.NewVideoProcessor(embeddings, transcriber, prober, slicer, cfg, nil)
	require.NoError(t, err)
	audioProc, err := ingest.NewAudioProcessor(embeddings, transcriber, prober, slicer, cfg, nil)
	require.NoError(t, err)
	imageProc, err := ingest.NewImageProcessor(embeddings, analyzer, cfg, nil)
	require.NoError(t, err)

	router, err := ingest.NewRouter(docProc, videoProc, audioProc, imageProc)
	require.NoError(t, err)

	store := blob.NewMemStore()
	pipeline, err := ingest.NewPipeline(docRepo, chunkRepo, router, store, cfg)
	require.NoError(t, err)

	return &pipelineFixture{
		pipeline:    pipeline,
		documents:   docRepo,
		chunks:      chunkRepo,
		store:       store,
		transcriber: transcriber,
		analyzer:    analyzer,
	}
}

func TestPipelineDocumentLifecycle(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.store.Put("uploads", "alice/notes.txt", []byte("a short plain text document"))
	err := f.pipeline.HandleEvent(ctx, ingest.Event{
		Bucket:      "uploads",
		Path:        "alice/notes.txt",
		ContentType: "text/plain",
	})
	require.NoError(t, err)

	doc, err := f.documents.GetByPath(ctx, "alice", "alice/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, doc.Status)
	assert.NotEmpty(t, doc.Checksum)
	assert.NotNil(t, doc.ProcessedAt)

	chunks, err := f.chunks.GetByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short plain text document", chunks[0].Content)
	assert.Len(t, chunks[0].TextEmbedding, testTextDim)
}

func TestPipelineVideoLifecycle(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.store.Put("uploads", "alice/talk.mp4", []byte("video-bytes"))
	err := f.pipeline.HandleEvent(ctx, ingest.Event{
		Bucket:      "uploads",
		Path:        "alice/talk.mp4",
		ContentType: "video/mp4",
	})
	require.NoError(t, err)

	doc, err := f.documents.GetByPath(ctx, "alice", "alice/talk.mp4")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, doc.Status)

	count, err := f.chunks.CountByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "90s probe at 30s segments")
}

func TestPipelineFailFastPersistsNothing(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.transcriber.TranscribeFunc = func(ctx context.Context, segment ai.Media) (*ai.Transcript, error) {
		return nil, context.DeadlineExceeded
	}

	f.store.Put("uploads", "alice/broken.mp4", []byte("video-bytes"))
	err := f.pipeline.HandleEvent(ctx, ingest.Event{
		Bucket:      "uploads",
		Path:        "alice/broken.mp4",
		ContentType: "video/mp4",
	})
	require.Error(t, err)

	var partial *ingest.PartialFailureError
	assert.ErrorAs(t, err, &partial)

	doc, err := f.documents.GetByPath(ctx, "alice", "alice/broken.mp4")
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, doc.Status)
	assert.NotEmpty(t, doc.ErrorMessage)

	count, err := f.chunks.CountByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Zero(t, count, "fail-fast aborts persist no chunks")
}

func TestPipelineUnsupportedTypeZeroFetches(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	var reads atomic.Int32
	f.store.ReadFunc = func(ctx context.Context, bucket, path string) ([]byte, error) {
		reads.Add(1)
		return []byte("x"), nil
	}

	err := f.pipeline.HandleEvent(ctx, ingest.Event{
		Bucket:      "uploads",
		Path:        "alice/firmware.bin",
		ContentType: "application/octet-stream",
	})
	require.Error(t, err)

	var typed *ingest.UnsupportedContentTypeError
	assert.ErrorAs(t, err, &typed)
	assert.Zero(t, reads.Load(), "unsupported types fail before any fetch or retry")

	doc, err := f.documents.GetByPath(ctx, "alice", "alice/firmware.bin")
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, doc.Status)
}

func TestPipelineVanishedObjectIsFatal(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	var reads atomic.Int32
	f.store.ReadFunc = func(ctx context.Context, bucket, path string) ([]byte, error) {
		reads.Add(1)
		return nil, blob.ErrObjectNotFound
	}

	err := f.pipeline.HandleEvent(ctx, ingest.Event{
		Bucket:      "uploads",
		Path:        "alice/gone.txt",
		ContentType: "text/plain",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, blob.ErrObjectNotFound)
	assert.Equal(t, int32(1), reads.Load(), "a vanished object is not retried")

	doc, err := f.documents.GetByPath(ctx, "alice", "alice/gone.txt")
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, doc.Status)
}

func TestPipelineTransientFetchRetried(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	var reads atomic.Int32
	f.store.ReadFunc = func(ctx context.Context, bucket, path string) ([]byte, error) {
		if reads.Add(1) == 1 {
			return nil, &blob.TransientError{Path: path, Err: assert.AnError}
		}
		return []byte("recovered content"), nil
	}

	err := f.pipeline.HandleEvent(ctx, ingest.Event{
		Bucket:      "uploads",
		Path:        "alice/flaky.txt",
		ContentType: "text/plain",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), reads.Load())

	doc, err := f.documents.GetByPath(ctx, "alice", "alice/flaky.txt")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, doc.Status)
}

func TestPipelineReprocessingReplacesChunks(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	event := ingest.Event{Bucket: "uploads", Path: "alice/doc.txt", ContentType: "text/plain"}

	f.store.Put("uploads", "alice/doc.txt", []byte("first version of the file"))
	require.NoError(t, f.pipeline.HandleEvent(ctx, event))

	doc, err := f.documents.GetByPath(ctx, "alice", "alice/doc.txt")
	require.NoError(t, err)
	firstChecksum := doc.Checksum

	f.store.Put("uploads", "alice/doc.txt", []byte("second version, longer than before"))
	require.NoError(t, f.pipeline.HandleEvent(ctx, event))

	after, err := f.documents.GetByPath(ctx, "alice", "alice/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, after.ID, "reprocessing reuses the document record")
	assert.NotEqual(t, firstChecksum, after.Checksum)

	chunks, err := f.chunks.GetByDocument(ctx, after.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "second version, longer than before", chunks[0].Content)
}

func TestPipelineNeverStuckInProcessing(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.analyzer.DescribeFunc = func(ctx context.Context, image ai.Media) (string, error) {
		return "", assert.AnError
	}

	f.store.Put("uploads", "alice/photo.png", []byte("png-bytes"))
	err := f.pipeline.HandleEvent(ctx, ingest.Event{
		Bucket:      "uploads",
		Path:        "alice/photo.png",
		ContentType: "image/png",
	})
	require.Error(t, err)

	doc, err := f.documents.GetByPath(ctx, "alice", "alice/photo.png")
	require.NoError(t, err)
	assert.NotEqual(t, core.StatusProcessing, doc.Status, "failures always reach a terminal state")
	assert.Equal(t, core.StatusError, doc.Status)
}

func TestPipelineEmptyPayload(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.store.Put("uploads", "alice/empty.txt", nil)
	err := f.pipeline.HandleEvent(ctx, ingest.Event{
		Bucket:      "uploads",
		Path:        "alice/empty.txt",
		ContentType: "text/plain",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrEmptyPayload)
}

func TestPipelineEventOwner(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.store.Put("uploads", "shared/report.txt", []byte("content"))
	err := f.pipeline.HandleEvent(ctx, ingest.Event{
		Bucket:      "uploads",
		Path:        "shared/report.txt",
		ContentType: "text/plain",
		UserID:      "bob",
	})
	require.NoError(t, err)

	doc, err := f.documents.GetByPath(ctx, "bob", "shared/report.txt")
	require.NoError(t, err)
	assert.Equal(t, "bob", doc.UserID)

	// No user in the event and no path prefix is rejected outright.
	err = f.pipeline.HandleEvent(ctx, ingest.Event{
		Bucket:      "uploads",
		Path:        "orphan.txt",
		ContentType: "text/plain",
	})
	assert.Error(t, err)
}

// missingOnceDocuments reports the document as absent on the first lookup,
// simulating a concurrent delivery that creates the row between the lookup
// and the create.
type missingOnceDocuments struct {
	storage.DocumentRepository
	missed atomic.Bool
}

func (r *missingOnceDocuments) GetByPath(ctx context.Context, userID, sourcePath string) (*core.Document, error) {
	if r.missed.CompareAndSwap(false, true) {
		return nil, storage.ErrNotFound
	}
	return r.DocumentRepository.GetByPath(ctx, userID, sourcePath)
}

func TestPipelineConcurrentRedeliveryReusesDocument(t *testing.T) {
	dbCfg := postgres.DefaultConfig("")
	dbCfg.MaxOpenConns = 4
	dbCfg.MaxIdleConns = 4
	backend, docRepo, chunkRepo, err := postgres.NewMemoryBackend(dbCfg)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	embeddings := newTestEmbeddings(t, mock.NewMockEmbedder(testTextDim), mock.NewMockMultimodalEmbedder(testMultimodalDim))
	cfg := fastProcessorConfig()
	docProc, err := ingest.NewDocumentProcessor(embeddings, newCodec(t), cfg, nil)
	require.NoError(t, err)
	router, err := ingest.NewRouter(docProc)
	require.NoError(t, err)

	store := blob.NewMemStore()
	store.Put("uploads", "alice/notes.txt", []byte("a short plain text document"))

	docs := &missingOnceDocuments{DocumentRepository: docRepo}
	pipeline, err := ingest.NewPipeline(docs, chunkRepo, router, store, cfg)
	require.NoError(t, err)

	ctx := context.Background()
	existing, err := docRepo.Create(ctx, &core.Document{
		UserID:      "alice",
		SourcePath:  "alice/notes.txt",
		ContentType: "text/plain",
		Status:      core.StatusPending,
	})
	require.NoError(t, err)

	err = pipeline.HandleEvent(ctx, ingest.Event{
		Bucket:      "uploads",
		Path:        "alice/notes.txt",
		ContentType: "text/plain",
	})
	require.NoError(t, err)

	doc, err := docRepo.GetByPath(ctx, "alice", "alice/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, doc.ID, "the losing create must reuse the winner's document")
	assert.Equal(t, core.StatusCompleted, doc.Status)
}
