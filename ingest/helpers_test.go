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
	"time"

	"github.com/stretchr/testify/require"

	"github.com/poiesic/mosaic/ai"
	"github.com/poiesic/mosaic/ai/mock"
	"github.com/poiesic/mosaic/core"
	"github.com/poiesic/mosaic/ingest"
	"github.com/poiesic/mosaic/limits"
)

const (
	testTextDim       = 8
	testMultimodalDim = 4
)

// transientErr marks an induced failure as retryable.
type transientErr struct{ msg string }

func (e *transientErr) Error() string   { return e.msg }
func (e *transientErr) Retryable() bool { return true }

func newCodec(t *testing.T) *limits.TokenCodec {
	t.Helper()
	codec, err := limits.NewTokenCodec()
	require.NoError(t, err)
	return codec
}

func testAIConfig() *ai.Config {
	cfg := ai.DefaultConfig()
	cfg.EmbeddingDimensions = testTextDim
	cfg.MultimodalDimensions = testMultimodalDim
	cfg.EmbeddingTimeout = 2 * time.Second
	cfg.MultimodalTimeout = 2 * time.Second
	return cfg
}

func newTestEmbeddings(t *testing.T, text *mock.MockEmbedder, mm *mock.MockMultimodalEmbedder) *ai.EmbeddingService {
	t.Helper()
	svc, err := ai.NewEmbeddingService(text, mm, newCodec(t), testAIConfig())
	require.NoError(t, err)
	return svc
}

// fastProcessorConfig keeps retries and timeouts test-sized.
func fastProcessorConfig() ingest.ProcessorConfig {
	cfg := ingest.DefaultProcessorConfig()
	cfg.SegmentTimeout = 2 * time.Second
	cfg.AnalysisTimeout = 2 * time.Second
	cfg.MaxCallAttempts = 2
	cfg.RetryBaseDelay = time.Millisecond
	return cfg
}

func testSource(path, mimeType string, data []byte) ingest.Source {
	return ingest.Source{
		Document: &core.Document{
			UserID:      "alice",
			SourcePath:  path,
			ContentType: mimeType,
			Status:      core.StatusProcessing,
		},
		Data:     data,
		MIMEType: mimeType,
	}
}
