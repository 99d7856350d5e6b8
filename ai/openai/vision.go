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
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/mosaic/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ImageAnalyzer implements ai.ImageAnalyzer using an OpenAI-compatible
// vision model via langchaingo.
type ImageAnalyzer struct {
	llm    *openai.LLM
	logger *slog.Logger
}

var _ ai.ImageAnalyzer = (*ImageAnalyzer)(nil)

func newImageAnalyzer(config *ai.Config) (*ImageAnalyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.VisionModel),
	)
	if err != nil {
		return nil, err
	}

	return &ImageAnalyzer{
		llm:    llm,
		logger: slog.Default().With("component", "openai-vision"),
	}, nil
}

// NewImageAnalyzer creates a new image analyzer using the provided
// configuration.
//
// Returns ai.ImageAnalyzer interface to enforce abstraction.
func NewImageAnalyzer(config *ai.Config) (ai.ImageAnalyzer, error) {
	return newImageAnalyzer(config)
}

// Describe produces a comprehensive, detailed description of the image.
func (a *ImageAnalyzer) Describe(ctx context.Context, image ai.Media) (string, error) {
	return a.analyze(ctx, image, describePrompt)
}

// Concepts produces a concise, search-optimized description of the image.
func (a *ImageAnalyzer) Concepts(ctx context.Context, image ai.Media) (string, error) {
	return a.analyze(ctx, image, conceptsPrompt)
}

func (a *ImageAnalyzer) analyze(ctx context.Context, image ai.Media, prompt string) (string, error) {
	a.logger.Debug("analyzing image", "media_bytes", len(image.Data), "mime_type", image.MIMEType)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(image.MIMEType, image.Data),
				llms.TextPart(prompt),
			},
		},
	}

	resp, err := a.llm.GenerateContent(ctx, content)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		a.logger.Error("vision analysis failed", "err", err)
		return "", &ai.ServiceError{Backend: "vision", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &ai.ServiceError{Backend: "vision", Err: ai.ErrEmptyResult}
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}
