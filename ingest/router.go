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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poiesic/mosaic/core"
)

// documentMIMETypes are the non-prefix-matched types the document
// processor accepts.
var documentMIMETypes = map[string]bool{
	"application/pdf":      true,
	"application/json":     true,
	"application/x-ndjson": true,
	"application/xml":      true,
}

// extensionKinds resolves files whose declared MIME type is missing or
// generic (application/octet-stream).
var extensionKinds = map[string]core.ContentKind{
	".txt":  core.KindDocument,
	".md":   core.KindDocument,
	".pdf":  core.KindDocument,
	".json": core.KindDocument,
	".xml":  core.KindDocument,
	".csv":  core.KindDocument,
	".html": core.KindDocument,
	".mp4":  core.KindVideo,
	".mov":  core.KindVideo,
	".webm": core.KindVideo,
	".mkv":  core.KindVideo,
	".mp3":  core.KindAudio,
	".wav":  core.KindAudio,
	".m4a":  core.KindAudio,
	".flac": core.KindAudio,
	".ogg":  core.KindAudio,
	".png":  core.KindImage,
	".jpg":  core.KindImage,
	".jpeg": core.KindImage,
	".gif":  core.KindImage,
	".webp": core.KindImage,
}

// Router dispatches a file to the processor for its content family.
// Adding a content type means registering one more processor; there is no
// open-ended branching anywhere else.
type Router struct {
	processors map[core.ContentKind]Processor
}

// NewRouter creates a router over the given processors. Every processor
// registers under its own Kind; registering two processors with the same
// kind is an error.
func NewRouter(processors ...Processor) (*Router, error) {
	r := &Router{processors: make(map[core.ContentKind]Processor, len(processors))}
	for _, p := range processors {
		if p == nil {
			return nil, fmt.Errorf("nil processor")
		}
		if _, dup := r.processors[p.Kind()]; dup {
			return nil, fmt.Errorf("duplicate processor for kind %q", p.Kind())
		}
		r.processors[p.Kind()] = p
	}
	return r, nil
}

// Resolve maps a declared content type and object path to a content kind.
// The MIME type wins when it is recognizable; the file extension is the
// fallback for missing or generic declarations.
func Resolve(contentType, path string) (core.ContentKind, error) {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	switch {
	case strings.HasPrefix(mime, "text/"):
		return core.KindDocument, nil
	case strings.HasPrefix(mime, "video/"):
		return core.KindVideo, nil
	case strings.HasPrefix(mime, "audio/"):
		return core.KindAudio, nil
	case strings.HasPrefix(mime, "image/"):
		return core.KindImage, nil
	case documentMIMETypes[mime]:
		return core.KindDocument, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if kind, ok := extensionKinds[ext]; ok {
		return kind, nil
	}

	return "", &UnsupportedContentTypeError{ContentType: contentType, Path: path}
}

// Route returns the processor for the file, or a fatal
// *UnsupportedContentTypeError when no processor can handle it.
func (r *Router) Route(contentType, path string) (Processor, error) {
	kind, err := Resolve(contentType, path)
	if err != nil {
		return nil, err
	}
	p, ok := r.processors[kind]
	if !ok {
		return nil, &UnsupportedContentTypeError{ContentType: contentType, Path: path}
	}
	return p, nil
}
