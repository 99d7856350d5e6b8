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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/poiesic/mosaic/ai"
)

// Transcriber implements ai.Transcriber against an OpenAI-compatible
// audio transcription endpoint (whisper wire format).
type Transcriber struct {
	host       string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ai.Transcriber = (*Transcriber)(nil)

// transcriptionResponse is the verbose_json response of the endpoint.
type transcriptionResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func newTranscriber(config *ai.Config) (*Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Transcriber{
		host:       config.Host,
		apiKey:     config.APIKey,
		model:      config.TranscriptionModel,
		httpClient: &http.Client{},
		logger:     slog.Default().With("component", "openai-transcriber"),
	}, nil
}

// NewTranscriber creates a new transcriber using the provided configuration.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config) (ai.Transcriber, error) {
	return newTranscriber(config)
}

// Transcribe produces a transcript for one media segment.
func (t *Transcriber) Transcribe(ctx context.Context, segment ai.Media) (*ai.Transcript, error) {
	t.logger.Debug("transcribing segment", "media_bytes", len(segment.Data), "mime_type", segment.MIMEType)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", fileNameFor(segment.MIMEType))
	if err != nil {
		return nil, fmt.Errorf("creating multipart file: %w", err)
	}
	if _, err := part.Write(segment.Data); err != nil {
		return nil, fmt.Errorf("writing multipart file: %w", err)
	}
	if err := writer.WriteField("model", t.model); err != nil {
		return nil, fmt.Errorf("writing model field: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("writing response_format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.host+"/audio/transcriptions", &buf)
	if err != nil {
		return nil, fmt.Errorf("creating transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ai.ServiceError{Backend: "transcription", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ai.ServiceError{Backend: "transcription", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ai.ServiceError{
			Backend: "transcription",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ai.ServiceError{Backend: "transcription", Err: err}
	}

	return &ai.Transcript{
		Text:     parsed.Text,
		Language: parsed.Language,
		Model:    t.model,
		HasAudio: parsed.Text != "",
	}, nil
}

// fileNameFor picks a filename extension the endpoint recognizes.
func fileNameFor(mimeType string) string {
	switch mimeType {
	case "video/mp4":
		return "segment.mp4"
	case "video/webm", "audio/webm":
		return "segment.webm"
	case "audio/wav", "audio/x-wav":
		return "segment.wav"
	case "audio/ogg":
		return "segment.ogg"
	default:
		return "segment.mp3"
	}
}
