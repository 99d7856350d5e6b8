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


package media

import (
	"context"
	"fmt"
)

// MockProber is a test double for Prober returning a fixed Info.
type MockProber struct {
	// Info is returned by Probe unless ProbeFunc is set.
	Info Info

	// ProbeFunc is called by Probe if set.
	ProbeFunc func(ctx context.Context, data []byte, mimeType string) (*Info, error)
}

var _ Prober = (*MockProber)(nil)

// Probe reports the configured Info.
func (m *MockProber) Probe(ctx context.Context, data []byte, mimeType string) (*Info, error) {
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, data, mimeType)
	}
	info := m.Info
	return &info, nil
}

// MockSlicer is a test double for Slicer producing synthetic segment bytes.
type MockSlicer struct {
	// SliceFunc is called by Slice if set.
	SliceFunc func(ctx context.Context, data []byte, mimeType string, seg Segment) ([]byte, error)
}

var _ Slicer = (*MockSlicer)(nil)

// Slice returns deterministic synthetic bytes naming the segment.
func (m *MockSlicer) Slice(ctx context.Context, data []byte, mimeType string, seg Segment) ([]byte, error) {
	if m.SliceFunc != nil {
		return m.SliceFunc(ctx, data, mimeType, seg)
	}
	return []byte(fmt.Sprintf("segment-%d[%s-%s]", seg.Index, seg.Start, seg.End)), nil
}
