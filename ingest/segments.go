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
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/mosaic/core"
	"github.com/poiesic/mosaic/media"
)

// silentSegmentContent is stored for segments whose transcript came back empty,
// typically because the segment has no audio track. Chunk content must be
// non-empty, and the marker keeps such segments identifiable.
const silentSegmentContent = "[no speech]"

type segmentResult struct {
	draft core.ChunkDraft
	err   error
}

// runSegments executes fn for every segment on a worker pool of the given
// size and collects results in segment order. One segment's failure never
// cancels its siblings; failures are returned for the caller to aggregate
// against its fail-fast threshold.
func runSegments(ctx context.Context, segments []media.Segment, concurrency int, fn func(ctx context.Context, seg media.Segment) (core.ChunkDraft, error)) ([]segmentResult, error) {
	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]segmentResult, len(segments))
	var wg sync.WaitGroup
	for _, seg := range segments {
		seg := seg
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			draft, segErr := fn(ctx, seg)
			results[seg.Index] = segmentResult{draft: draft, err: segErr}
		})
		if submitErr != nil {
			wg.Done()
			results[seg.Index] = segmentResult{err: submitErr}
		}
	}
	wg.Wait()

	return results, nil
}

// collectSegments splits results into successful drafts (in segment order)
// and the failure count.
func collectSegments(results []segmentResult) ([]core.ChunkDraft, int) {
	drafts := make([]core.ChunkDraft, 0, len(results))
	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			continue
		}
		drafts = append(drafts, res.draft)
	}
	return drafts, failed
}
