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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/mosaic/ai"
	"github.com/poiesic/mosaic/core"
	"github.com/poiesic/mosaic/limits"
)

// DocumentProcessor splits textual files into token-bounded chunks and
// embeds each chunk in the text vector space.
type DocumentProcessor struct {
	embeddings *ai.EmbeddingService
	codec      *limits.TokenCodec
	config     ProcessorConfig
	logger     *slog.Logger
}

var _ Processor = (*DocumentProcessor)(nil)

// NewDocumentProcessor creates a document processor.
func NewDocumentProcessor(embeddings *ai.EmbeddingService, codec *limits.TokenCodec, config ProcessorConfig, logger *slog.Logger) (*DocumentProcessor, error) {
	if embeddings == nil {
		return nil, ErrEmbeddingServiceRequired
	}
	if codec == nil {
		return nil, fmt.Errorf("token codec is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentProcessor{
		embeddings: embeddings,
		codec:      codec,
		config:     config,
		logger:     logger.With("processor", "document"),
	}, nil
}

// Kind identifies the content family.
func (p *DocumentProcessor) Kind() core.ContentKind { return core.KindDocument }

// Process splits the text into chunks of ChunkSize tokens. PDF payloads
// have their text extracted first; other document types are chunked as-is.
// Chunk i covers
// tokens [i*size-overlap, (i+1)*size), clamped to the text, so adjacent
// chunks share exactly ChunkOverlap tokens and a text of n tokens yields
// ceil(n/size) chunks. Boundaries are computed on token count, never on
// characters. Each chunk gets a text embedding; any embedding failure
// after bounded retries fails the whole document.
func (p *DocumentProcessor) Process(ctx context.Context, src Source) ([]core.ChunkDraft, error) {
	docType := docTypeFor(src.MIMEType, src.Document.SourcePath)

	text, err := extractText(docType, src.Data)
	if err != nil {
		return nil, err
	}
	tokens := p.codec.Encode(text)
	if len(tokens) == 0 {
		p.logger.Info("document produced no tokens", "path", src.Document.SourcePath)
		return nil, nil
	}

	size := p.config.ChunkSize
	overlap := p.config.ChunkOverlap
	count := (len(tokens) + size - 1) / size

	drafts := make([]core.ChunkDraft, 0, count)
	for i := 0; i < count; i++ {
		start := i*size - overlap
		if start < 0 {
			start = 0
		}
		end := (i + 1) * size
		if end > len(tokens) {
			end = len(tokens)
		}
		content := p.codec.Decode(tokens[start:end])

		var vector []float32
		err := p.config.retryCall(ctx, func() error {
			var embedErr error
			vector, embedErr = p.embeddings.EmbedText(ctx, content)
			return embedErr
		})
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", i, err)
		}

		drafts = append(drafts, core.ChunkDraft{
			ChunkIndex: i,
			Content:    content,
			Metadata: core.ChunkMetadata{
				ChunkIndex: i,
				DocType:    docType,
				Section:    sectionFor(docType, content),
			},
			EmbeddingType: core.EmbeddingText,
			TextEmbedding: vector,
		})
	}

	p.logger.Info("document chunked",
		"path", src.Document.SourcePath, "tokens", len(tokens), "chunks", len(drafts))
	return drafts, nil
}

func docTypeFor(mimeType, path string) string {
	mime := strings.ToLower(mimeType)
	switch {
	case strings.Contains(mime, "markdown") || strings.HasSuffix(path, ".md"):
		return "markdown"
	case strings.Contains(mime, "pdf") || strings.HasSuffix(path, ".pdf"):
		return "pdf"
	case strings.Contains(mime, "json"):
		return "json"
	case strings.Contains(mime, "html"):
		return "html"
	case strings.Contains(mime, "csv"):
		return "csv"
	default:
		return "text"
	}
}

// sectionFor labels a chunk with the first markdown heading it contains.
// Non-markdown content carries no section.
func sectionFor(docType, content string) string {
	if docType != "markdown" {
		return ""
	}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	return ""
}
