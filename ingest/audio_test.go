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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/mosaic/ai"
	"github.com/poiesic/mosaic/ai/mock"
	"github.com/poiesic/mosaic/core"
	"github.com/poiesic/mosaic/ingest"
	"github.com/poiesic/mosaic/media"
)

func newAudioProcessor(t *testing.T, embeddings *ai.EmbeddingService, transcriber ai.Transcriber, info media.Info, cfg ingest.ProcessorConfig) *ingest.AudioProcessor {
	t.Helper()
	proc, err := ingest.NewAudioProcessor(embeddings, transcriber, &media.MockProber{Info: info}, &media.MockSlicer{}, cfg, nil)
	require.NoError(t, err)
	return proc
}

func TestAudioSegmentation(t *testing.T) {
	embeddings := newTestEmbeddings(t, mock.NewMockEmbedder(testTextDim), mock.NewMockMultimodalEmbedder(testMultimodalDim))
	info := media.Info{Duration: 150 * time.Second, HasAudio: true, SampleRate: 44100, Channels: 2}

	proc := newAudioProcessor(t, embeddings, mock.NewMockTranscriber(), info, fastProcessorConfig())
	drafts, err := proc.Process(context.Background(), testSource("alice/podcast.mp3", "audio/mpeg", []byte("audio-bytes")))
	require.NoError(t, err)
	require.Len(t, drafts, 3, "150s at 60s segments")

	for i, d := range drafts {
		assert.Equal(t, i, d.Metadata.SegmentIndex)
		assert.Equal(t, 3, d.Metadata.TotalSegments)
		assert.Equal(t, 44100, d.Metadata.SampleRate)
		assert.Equal(t, 2, d.Metadata.Channels)
		assert.NotEmpty(t, d.Content)
		require.NotNil(t, d.Metadata.Transcript)
		assert.False(t, d.Metadata.Transcript.Timestamp.IsZero(), "transcript records when it was generated")
		assert.Equal(t, core.EmbeddingText, d.EmbeddingType)
		assert.Len(t, d.TextEmbedding, testTextDim)
		assert.Nil(t, d.MultimodalEmbedding, "multimodal audio embedding is off by default")
	}
	assert.Equal(t, 30.0, drafts[2].Metadata.Duration, "final segment absorbs the remainder")
}

func TestAudioMultimodalOptIn(t *testing.T) {
	embeddings := newTestEmbeddings(t, mock.NewMockEmbedder(testTextDim), mock.NewMockMultimodalEmbedder(testMultimodalDim))

	cfg := fastProcessorConfig()
	cfg.AudioMultimodal = true
	proc := newAudioProcessor(t, embeddings, mock.NewMockTranscriber(), media.Info{Duration: 60 * time.Second, HasAudio: true}, cfg)

	drafts, err := proc.Process(context.Background(), testSource("alice/voice.m4a", "audio/mp4", []byte("audio-bytes")))
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Len(t, drafts[0].TextEmbedding, testTextDim)
	assert.Len(t, drafts[0].MultimodalEmbedding, testMultimodalDim)
}

func TestAudioFailFast(t *testing.T) {
	embeddings := newTestEmbeddings(t, mock.NewMockEmbedder(testTextDim), mock.NewMockMultimodalEmbedder(testMultimodalDim))

	transcriber := mock.NewMockTranscriber()
	var mu sync.Mutex
	failed := 0
	transcriber.TranscribeFunc = func(ctx context.Context, segment ai.Media) (*ai.Transcript, error) {
		mu.Lock()
		defer mu.Unlock()
		if failed < 3 {
			failed++
			return nil, context.DeadlineExceeded
		}
		return &ai.Transcript{Text: "ok", HasAudio: true}, nil
	}

	cfg := fastProcessorConfig()
	cfg.MaxCallAttempts = 1
	proc := newAudioProcessor(t, embeddings, transcriber, media.Info{Duration: 240 * time.Second, HasAudio: true}, cfg)

	drafts, err := proc.Process(context.Background(), testSource("alice/noisy.mp3", "audio/mpeg", []byte("audio-bytes")))
	require.Error(t, err)
	assert.Nil(t, drafts)

	var partial *ingest.PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, core.KindAudio, partial.Kind)
	assert.Equal(t, 3, partial.Failed)
	assert.Equal(t, 4, partial.Total)
}
