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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the AI backends. It is constructed once at
// startup and threaded into component constructors; nothing in this package
// reads environment state directly.
type Config struct {
	// Host is the base URL for OpenAI-compatible services.
	// Example: "http://localhost:11434/v1" for a local server.
	Host string

	// APIKey authenticates against the backends. Use "none" for local
	// services that do not require authentication.
	APIKey string

	// EmbeddingModel is the text embedding model identifier.
	EmbeddingModel string

	// EmbeddingDimensions is the expected text vector dimension (A).
	EmbeddingDimensions int

	// EmbeddingTokenLimit is the text backend's maximum input token count.
	EmbeddingTokenLimit int

	// EmbeddingTimeout bounds each text embedding call.
	EmbeddingTimeout time.Duration

	// MultimodalModel is the multimodal embedding model identifier.
	MultimodalModel string

	// MultimodalDimensions is the expected multimodal vector dimension (B).
	MultimodalDimensions int

	// ContextByteLimit is the multimodal backend's maximum context text
	// size in bytes.
	ContextByteLimit int

	// MultimodalTimeout bounds each multimodal embedding call. The default
	// is 90s rather than 60s; the multimodal backend is empirically slower.
	MultimodalTimeout time.Duration

	// TranscriptionModel is the speech-to-text model identifier.
	TranscriptionModel string

	// TranscriptionTimeout bounds each transcription call.
	TranscriptionTimeout time.Duration

	// VisionModel is the image analysis model identifier.
	VisionModel string

	// VisionTimeout bounds each image analysis call.
	VisionTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the backend host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAPIKey sets the backend API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEmbeddingModel sets the text embedding model and its expected
// vector dimension.
func WithEmbeddingModel(model string, dimensions int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
		c.EmbeddingDimensions = dimensions
	}
}

// WithMultimodalModel sets the multimodal embedding model and its expected
// vector dimension.
func WithMultimodalModel(model string, dimensions int) ConfigOption {
	return func(c *Config) {
		c.MultimodalModel = model
		c.MultimodalDimensions = dimensions
	}
}

// WithTranscriptionModel sets the speech-to-text model identifier.
func WithTranscriptionModel(model string) ConfigOption {
	return func(c *Config) {
		c.TranscriptionModel = model
	}
}

// WithVisionModel sets the image analysis model identifier.
func WithVisionModel(model string) ConfigOption {
	return func(c *Config) {
		c.VisionModel = model
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	return &Config{
		Host:                 "http://localhost:11434/v1",
		APIKey:               "none",
		EmbeddingModel:       "text-embedding-3-small",
		EmbeddingDimensions:  1536,
		EmbeddingTokenLimit:  8191,
		EmbeddingTimeout:     60 * time.Second,
		MultimodalModel:      "multimodalembedding",
		MultimodalDimensions: 1408,
		ContextByteLimit:     1024,
		MultimodalTimeout:    90 * time.Second,
		TranscriptionModel:   "whisper-1",
		TranscriptionTimeout: 90 * time.Second,
		VisionModel:          "gpt-4o-mini",
		VisionTimeout:        60 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Most OpenAI-compatible APIs (Ollama, LocalAI, vLLM) require the /v1
// suffix on the host.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.EmbeddingDimensions <= 0 {
		return errors.New("ai config: EmbeddingDimensions must be positive")
	}
	if c.EmbeddingTokenLimit <= 0 {
		return errors.New("ai config: EmbeddingTokenLimit must be positive")
	}
	if c.MultimodalModel == "" {
		return errors.New("ai config: MultimodalModel is required")
	}
	if c.MultimodalDimensions <= 0 {
		return errors.New("ai config: MultimodalDimensions must be positive")
	}
	if c.ContextByteLimit <= 0 {
		return errors.New("ai config: ContextByteLimit must be positive")
	}
	if c.TranscriptionModel == "" {
		return errors.New("ai config: TranscriptionModel is required")
	}
	if c.VisionModel == "" {
		return errors.New("ai config: VisionModel is required")
	}
	if c.EmbeddingTimeout <= 0 || c.MultimodalTimeout <= 0 ||
		c.TranscriptionTimeout <= 0 || c.VisionTimeout <= 0 {
		return errors.New("ai config: all call timeouts must be positive")
	}
	return nil
}
