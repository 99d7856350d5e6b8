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


package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/poiesic/mosaic/ai"
)

// MultimodalEmbedder implements ai.MultimodalEmbedder against an
// OpenAI-compatible multimodal embedding endpoint. langchaingo does not
// cover this endpoint, so it speaks the wire format directly.
type MultimodalEmbedder struct {
	host       string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ai.MultimodalEmbedder = (*MultimodalEmbedder)(nil)

// multimodalRequest is the request body for the multimodal embedding API.
type multimodalRequest struct {
	Model string          `json:"model"`
	Input multimodalInput `json:"input"`
}

type multimodalInput struct {
	// Media is the base64-encoded media payload.
	Media string `json:"media"`
	// MIMEType declares how to decode Media.
	MIMEType string `json:"mime_type"`
	// Text is the optional context text accompanying the media.
	Text string `json:"text,omitempty"`
}

// multimodalResponse is the response body for the multimodal embedding API.
type multimodalResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

func newMultimodalEmbedder(config *ai.Config) (*MultimodalEmbedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &MultimodalEmbedder{
		host:   config.Host,
		apiKey: config.APIKey,
		model:  config.MultimodalModel,
		// Per-call deadlines come from the caller's context; the client
		// itself carries no timeout so the two never fight.
		httpClient: &http.Client{},
		logger:     slog.Default().With("component", "openai-multimodal-embedder"),
	}, nil
}

// NewMultimodalEmbedder creates a new multimodal embedder using the provided
// configuration.
//
// Returns ai.MultimodalEmbedder interface to enforce abstraction.
func NewMultimodalEmbedder(config *ai.Config) (ai.MultimodalEmbedder, error) {
	return newMultimodalEmbedder(config)
}

// EmbedMultimodal generates a vector embedding keyed on the media content
// and the accompanying context text.
func (m *MultimodalEmbedder) EmbedMultimodal(ctx context.Context, media ai.Media, contextText string) ([]float32, error) {
	m.logger.Debug("generating multimodal embedding",
		"media_bytes", len(media.Data), "mime_type", media.MIMEType, "context_bytes", len(contextText))

	reqBody := multimodalRequest{
		Model: m.model,
		Input: multimodalInput{
			Media:    base64.StdEncoding.EncodeToString(media.Data),
			MIMEType: media.MIMEType,
			Text:     contextText,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling multimodal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.host+"/embeddings/multimodal", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating multimodal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		// Deadline errors surface here; leave them unwrapped so the
		// timeout wrapper can classify them.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ai.ServiceError{Backend: "multimodal-embedding", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ai.ServiceError{Backend: "multimodal-embedding", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ai.ServiceError{
			Backend: "multimodal-embedding",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var parsed multimodalResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ai.ServiceError{Backend: "multimodal-embedding", Err: err}
	}
	if len(parsed.Data) == 0 {
		return nil, &ai.ServiceError{Backend: "multimodal-embedding", Err: ai.ErrEmptyResult}
	}

	return parsed.Data[0].Embedding, nil
}
