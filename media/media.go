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


// Package media provides segmentation planning and probing for video and
// audio files. It holds no codec logic; slicing and probing are delegated
// to implementations of the interfaces below.
package media

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidDuration indicates a non-positive total or segment duration.
var ErrInvalidDuration = errors.New("durations must be positive")

// Info describes a media file as reported by a Prober.
type Info struct {
	Duration time.Duration
	HasAudio bool

	// Audio characteristics; zero when unknown.
	SampleRate int
	Channels   int
}

// Segment is one fixed-duration slice of a media file, processed as an
// independent chunking unit.
type Segment struct {
	Index int
	Start time.Duration
	End   time.Duration
}

// Duration returns the segment's length. The final segment of a file may
// be shorter than the configured segment duration.
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// Prober inspects a media payload and reports its characteristics.
// Implementations must be thread-safe for concurrent use.
type Prober interface {
	Probe(ctx context.Context, data []byte, mimeType string) (*Info, error)
}

// Slicer cuts one segment's bytes out of a media payload.
// Implementations must be thread-safe for concurrent use.
type Slicer interface {
	Slice(ctx context.Context, data []byte, mimeType string, seg Segment) ([]byte, error)
}

// Plan divides a media file of the given total duration into fixed-duration
// segments. The last segment absorbs any remainder shorter than a full
// segment length. A 180s file with 30s segments yields exactly 6 segments.
func Plan(total, segment time.Duration) ([]Segment, error) {
	if total <= 0 || segment <= 0 {
		return nil, ErrInvalidDuration
	}

	var segments []Segment
	for start := time.Duration(0); start < total; start += segment {
		end := start + segment
		if end > total {
			end = total
		}
		segments = append(segments, Segment{Index: len(segments), Start: start, End: end})
	}
	return segments, nil
}
