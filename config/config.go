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


// Package config loads the service configuration from the environment and
// an optional .env file. Components never read environment state directly;
// everything flows through the immutable Config built here at startup.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/poiesic/mosaic/ai"
	"github.com/poiesic/mosaic/ingest"
	"github.com/poiesic/mosaic/storage/postgres"
)

// Config is the full configuration surface of the service.
type Config struct {
	// Server
	ListenAddr string `mapstructure:"LISTEN_ADDR"`
	GinMode    string `mapstructure:"GIN_MODE"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	// Database. PoolSize must be at least Concurrency: one wedged segment
	// must never starve a sibling invocation of connections.
	DatabaseURL           string `mapstructure:"DATABASE_URL"`
	PoolSize              int    `mapstructure:"DATABASE_POOL_SIZE"`
	AcquireTimeoutSeconds int    `mapstructure:"DATABASE_ACQUIRE_TIMEOUT_SECONDS"`

	// Object storage
	StorageRoot  string `mapstructure:"STORAGE_ROOT"`
	UploadBucket string `mapstructure:"UPLOAD_BUCKET"`

	// AI backends
	AIHost                 string `mapstructure:"AI_HOST"`
	AIAPIKey               string `mapstructure:"AI_API_KEY"`
	EmbeddingModel         string `mapstructure:"EMBEDDING_MODEL"`
	EmbeddingDimensions    int    `mapstructure:"EMBEDDING_DIMENSIONS"`
	EmbeddingTokenLimit    int    `mapstructure:"EMBEDDING_TOKEN_LIMIT"`
	EmbeddingTimeoutSecs   int    `mapstructure:"EMBEDDING_TIMEOUT_SECONDS"`
	MultimodalModel        string `mapstructure:"MULTIMODAL_MODEL"`
	MultimodalDimensions   int    `mapstructure:"MULTIMODAL_DIMENSIONS"`
	ContextByteLimit       int    `mapstructure:"CONTEXT_BYTE_LIMIT"`
	MultimodalTimeoutSecs  int    `mapstructure:"MULTIMODAL_TIMEOUT_SECONDS"`
	TranscriptionModel     string `mapstructure:"TRANSCRIPTION_MODEL"`
	TranscriptionTimeoutS  int    `mapstructure:"TRANSCRIPTION_TIMEOUT_SECONDS"`
	VisionModel            string `mapstructure:"VISION_MODEL"`
	VisionTimeoutSeconds   int    `mapstructure:"VISION_TIMEOUT_SECONDS"`

	// Processing policy
	ChunkSize              int     `mapstructure:"CHUNK_SIZE"`
	ChunkOverlap           int     `mapstructure:"CHUNK_OVERLAP"`
	VideoSegmentSeconds    int     `mapstructure:"VIDEO_SEGMENT_SECONDS"`
	AudioSegmentSeconds    int     `mapstructure:"AUDIO_SEGMENT_SECONDS"`
	SegmentTimeoutSeconds  int     `mapstructure:"SEGMENT_TIMEOUT_SECONDS"`
	AnalysisTimeoutSeconds int     `mapstructure:"ANALYSIS_TIMEOUT_SECONDS"`
	FailFastRatio          float64 `mapstructure:"FAIL_FAST_RATIO"`
	Concurrency            int     `mapstructure:"CONCURRENCY"`
	MaxCallAttempts        int     `mapstructure:"MAX_CALL_ATTEMPTS"`
	AudioMultimodal        bool    `mapstructure:"AUDIO_MULTIMODAL"`
}

var configKeys = []string{
	"LISTEN_ADDR", "GIN_MODE", "LOG_LEVEL",
	"DATABASE_URL", "DATABASE_POOL_SIZE", "DATABASE_ACQUIRE_TIMEOUT_SECONDS",
	"STORAGE_ROOT", "UPLOAD_BUCKET",
	"AI_HOST", "AI_API_KEY",
	"EMBEDDING_MODEL", "EMBEDDING_DIMENSIONS", "EMBEDDING_TOKEN_LIMIT", "EMBEDDING_TIMEOUT_SECONDS",
	"MULTIMODAL_MODEL", "MULTIMODAL_DIMENSIONS", "CONTEXT_BYTE_LIMIT", "MULTIMODAL_TIMEOUT_SECONDS",
	"TRANSCRIPTION_MODEL", "TRANSCRIPTION_TIMEOUT_SECONDS",
	"VISION_MODEL", "VISION_TIMEOUT_SECONDS",
	"CHUNK_SIZE", "CHUNK_OVERLAP",
	"VIDEO_SEGMENT_SECONDS", "AUDIO_SEGMENT_SECONDS",
	"SEGMENT_TIMEOUT_SECONDS", "ANALYSIS_TIMEOUT_SECONDS",
	"FAIL_FAST_RATIO", "CONCURRENCY", "MAX_CALL_ATTEMPTS", "AUDIO_MULTIMODAL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DATABASE_POOL_SIZE", 10)
	v.SetDefault("DATABASE_ACQUIRE_TIMEOUT_SECONDS", 10)

	v.SetDefault("STORAGE_ROOT", "./data")
	v.SetDefault("UPLOAD_BUCKET", "uploads")

	v.SetDefault("AI_HOST", "http://localhost:11434/v1")
	v.SetDefault("AI_API_KEY", "none")
	v.SetDefault("EMBEDDING_MODEL", "text-embedding-3-small")
	v.SetDefault("EMBEDDING_DIMENSIONS", 1536)
	v.SetDefault("EMBEDDING_TOKEN_LIMIT", 8191)
	v.SetDefault("EMBEDDING_TIMEOUT_SECONDS", 60)
	v.SetDefault("MULTIMODAL_MODEL", "multimodalembedding")
	v.SetDefault("MULTIMODAL_DIMENSIONS", 1408)
	v.SetDefault("CONTEXT_BYTE_LIMIT", 1024)
	v.SetDefault("MULTIMODAL_TIMEOUT_SECONDS", 90)
	v.SetDefault("TRANSCRIPTION_MODEL", "whisper-1")
	v.SetDefault("TRANSCRIPTION_TIMEOUT_SECONDS", 90)
	v.SetDefault("VISION_MODEL", "gpt-4o-mini")
	v.SetDefault("VISION_TIMEOUT_SECONDS", 60)

	v.SetDefault("CHUNK_SIZE", 1000)
	v.SetDefault("CHUNK_OVERLAP", 200)
	v.SetDefault("VIDEO_SEGMENT_SECONDS", 30)
	v.SetDefault("AUDIO_SEGMENT_SECONDS", 60)
	v.SetDefault("SEGMENT_TIMEOUT_SECONDS", 120)
	v.SetDefault("ANALYSIS_TIMEOUT_SECONDS", 60)
	v.SetDefault("FAIL_FAST_RATIO", 0.5)
	v.SetDefault("CONCURRENCY", 2)
	v.SetDefault("MAX_CALL_ATTEMPTS", 3)
	v.SetDefault("AUDIO_MULTIMODAL", false)
}

// Load reads configuration from an optional .env file and the process
// environment, validates it, and returns the immutable result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// The .env file is optional.
	_ = v.ReadInConfig()

	// AutomaticEnv does not apply during Unmarshal; bind explicitly.
	for _, key := range configKeys {
		if val := os.Getenv(key); val != "" {
			v.Set(key, val)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field invariants the per-component configs cannot
// see, then the component configs themselves.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if c.PoolSize < c.Concurrency {
		return fmt.Errorf("config: DATABASE_POOL_SIZE (%d) must be at least CONCURRENCY (%d)",
			c.PoolSize, c.Concurrency)
	}
	pg := c.Postgres()
	if err := pg.Validate(); err != nil {
		return err
	}
	if err := c.AI().Validate(); err != nil {
		return err
	}
	proc := c.Processor()
	return proc.Validate()
}

// Postgres builds the database backend configuration.
func (c *Config) Postgres() postgres.Config {
	cfg := postgres.DefaultConfig(c.DatabaseURL)
	cfg.MaxOpenConns = c.PoolSize
	if cfg.MaxIdleConns > c.PoolSize {
		cfg.MaxIdleConns = c.PoolSize
	}
	cfg.AcquireTimeout = time.Duration(c.AcquireTimeoutSeconds) * time.Second
	return cfg
}

// AI builds the AI backend configuration.
func (c *Config) AI() *ai.Config {
	return &ai.Config{
		Host:                 c.AIHost,
		APIKey:               c.AIAPIKey,
		EmbeddingModel:       c.EmbeddingModel,
		EmbeddingDimensions:  c.EmbeddingDimensions,
		EmbeddingTokenLimit:  c.EmbeddingTokenLimit,
		EmbeddingTimeout:     time.Duration(c.EmbeddingTimeoutSecs) * time.Second,
		MultimodalModel:      c.MultimodalModel,
		MultimodalDimensions: c.MultimodalDimensions,
		ContextByteLimit:     c.ContextByteLimit,
		MultimodalTimeout:    time.Duration(c.MultimodalTimeoutSecs) * time.Second,
		TranscriptionModel:   c.TranscriptionModel,
		TranscriptionTimeout: time.Duration(c.TranscriptionTimeoutS) * time.Second,
		VisionModel:          c.VisionModel,
		VisionTimeout:        time.Duration(c.VisionTimeoutSeconds) * time.Second,
	}
}

// Processor builds the processing policy configuration.
func (c *Config) Processor() ingest.ProcessorConfig {
	cfg := ingest.DefaultProcessorConfig()
	cfg.ChunkSize = c.ChunkSize
	cfg.ChunkOverlap = c.ChunkOverlap
	cfg.VideoSegment = time.Duration(c.VideoSegmentSeconds) * time.Second
	cfg.AudioSegment = time.Duration(c.AudioSegmentSeconds) * time.Second
	cfg.SegmentTimeout = time.Duration(c.SegmentTimeoutSeconds) * time.Second
	cfg.AnalysisTimeout = time.Duration(c.AnalysisTimeoutSeconds) * time.Second
	cfg.FailFastRatio = c.FailFastRatio
	cfg.Concurrency = c.Concurrency
	cfg.MaxCallAttempts = c.MaxCallAttempts
	cfg.AudioMultimodal = c.AudioMultimodal
	return cfg
}
