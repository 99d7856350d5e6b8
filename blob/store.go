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


// Package blob abstracts the object storage holding uploaded files.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store reads raw uploaded bytes from object storage.
// Implementations must be thread-safe for concurrent use.
type Store interface {
	// Read fetches the full content of one object. Returns
	// ErrObjectNotFound when the object no longer exists (non-retryable)
	// and *TransientError for I/O failures that may clear on retry.
	Read(ctx context.Context, bucket, path string) ([]byte, error)
}

// FSStore serves objects from a directory tree: <root>/<bucket>/<path>.
type FSStore struct {
	root string
}

var _ Store = (*FSStore)(nil)

// NewFSStore creates a filesystem-backed store rooted at root.
func NewFSStore(root string) (*FSStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("storage root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage root %q is not a directory", root)
	}
	return &FSStore{root: root}, nil
}

// Read fetches one object's bytes from disk.
func (s *FSStore) Read(ctx context.Context, bucket, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := filepath.Join(s.root, filepath.Clean("/"+bucket), filepath.Clean("/"+path))
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, path)
		}
		return nil, &TransientError{Path: bucket + "/" + path, Err: err}
	}
	return data, nil
}
