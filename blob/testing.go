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


package blob

import (
	"context"
	"fmt"
	"sync"
)

// MemStore is an in-memory Store for testing. Objects are keyed by
// "bucket/path". ReadFunc, when set, overrides the default lookup.
type MemStore struct {
	// ReadFunc is called by Read if set.
	ReadFunc func(ctx context.Context, bucket, path string) ([]byte, error)

	mu      sync.RWMutex
	objects map[string][]byte
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

// Put stores an object.
func (s *MemStore) Put(bucket, path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+path] = data
}

// Read fetches one object's bytes.
func (s *MemStore) Read(ctx context.Context, bucket, path string) ([]byte, error) {
	if s.ReadFunc != nil {
		return s.ReadFunc(ctx, bucket, path)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[bucket+"/"+path]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, path)
	}
	return data, nil
}
