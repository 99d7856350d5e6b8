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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/mosaic/ai/mock"
	"github.com/poiesic/mosaic/core"
	"github.com/poiesic/mosaic/ingest"
	"github.com/poiesic/mosaic/limits"
	"github.com/poiesic/mosaic/media"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		path        string
		want        core.ContentKind
	}{
		{"plain text", "text/plain", "u1/notes.txt", core.KindDocument},
		{"markdown with charset", "text/markdown; charset=utf-8", "u1/readme.md", core.KindDocument},
		{"pdf", "application/pdf", "u1/paper.pdf", core.KindDocument},
		{"video", "video/mp4", "u1/clip.mp4", core.KindVideo},
		{"audio", "audio/mpeg", "u1/song.mp3", core.KindAudio},
		{"image", "image/png", "u1/photo.png", core.KindImage},
		{"generic mime, video extension", "application/octet-stream", "u1/clip.mov", core.KindVideo},
		{"empty mime, audio extension", "", "u1/voice.wav", core.KindAudio},
		{"uppercase mime", "IMAGE/JPEG", "u1/photo.jpg", core.KindImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := ingest.Resolve(tt.contentType, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestResolveUnsupported(t *testing.T) {
	_, err := ingest.Resolve("application/octet-stream", "u1/firmware.bin")
	require.Error(t, err)

	var typed *ingest.UnsupportedContentTypeError
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, "application/octet-stream", typed.ContentType)
	assert.Equal(t, "u1/firmware.bin", typed.Path)
	assert.False(t, limits.Retryable(err), "unsupported content types are never retried")
}

func TestRouterDispatch(t *testing.T) {
	embeddings := newTestEmbeddings(t, mock.NewMockEmbedder(testTextDim), mock.NewMockMultimodalEmbedder(testMultimodalDim))
	cfg := fastProcessorConfig()

	docProc, err := ingest.NewDocumentProcessor(embeddings, newCodec(t), cfg, nil)
	require.NoError(t, err)
	imgProc, err := ingest.NewImageProcessor(embeddings, mock.NewMockImageAnalyzer(), cfg, nil)
	require.NoError(t, err)

	router, err := ingest.NewRouter(docProc, imgProc)
	require.NoError(t, err)

	p, err := router.Route("text/plain", "u1/a.txt")
	require.NoError(t, err)
	assert.Equal(t, core.KindDocument, p.Kind())

	p, err = router.Route("image/png", "u1/b.png")
	require.NoError(t, err)
	assert.Equal(t, core.KindImage, p.Kind())

	// Recognized kind with no registered processor is unsupported too.
	_, err = router.Route("video/mp4", "u1/c.mp4")
	var typed *ingest.UnsupportedContentTypeError
	assert.ErrorAs(t, err, &typed)
}

func TestRouterRejectsDuplicateKind(t *testing.T) {
	embeddings := newTestEmbeddings(t, mock.NewMockEmbedder(testTextDim), mock.NewMockMultimodalEmbedder(testMultimodalDim))
	cfg := fastProcessorConfig()

	transcriber := mock.NewMockTranscriber()
	prober := &media.MockProber{}
	slicer := &media.MockSlicer{}

	a, err := ingest.NewAudioProcessor(embeddings, transcriber, prober, slicer, cfg, nil)
	require.NoError(t, err)
	b, err := ingest.NewAudioProcessor(embeddings, transcriber, prober, slicer, cfg, nil)
	require.NoError(t, err)

	_, err = ingest.NewRouter(a, b)
	assert.Error(t, err)
}
