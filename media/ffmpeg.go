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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// FFProber probes media metadata with ffprobe.
type FFProber struct {
	// Bin is the ffprobe executable. Default "ffprobe" from PATH.
	Bin string
}

var _ Prober = (*FFProber)(nil)

// NewFFProber creates a prober using ffprobe from PATH.
func NewFFProber() *FFProber {
	return &FFProber{Bin: "ffprobe"}
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// Probe reads duration and audio characteristics from the payload.
func (p *FFProber) Probe(ctx context.Context, data []byte, mimeType string) (*Info, error) {
	cmd := exec.CommandContext(ctx, p.Bin,
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		"-i", "pipe:0")
	cmd.Stdin = bytes.NewReader(data)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing duration %q: %w", probed.Format.Duration, err)
	}

	info := &Info{Duration: time.Duration(seconds * float64(time.Second))}
	for _, stream := range probed.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		info.HasAudio = true
		info.Channels = stream.Channels
		if rate, err := strconv.Atoi(stream.SampleRate); err == nil {
			info.SampleRate = rate
		}
		break
	}
	return info, nil
}

// FFSlicer cuts segments with ffmpeg stream copy. Video goes into a
// matroska container because mp4 cannot be written to a pipe; audio keeps
// a streamable container matching its codec.
type FFSlicer struct {
	// Bin is the ffmpeg executable. Default "ffmpeg" from PATH.
	Bin string
}

var _ Slicer = (*FFSlicer)(nil)

// NewFFSlicer creates a slicer using ffmpeg from PATH.
func NewFFSlicer() *FFSlicer {
	return &FFSlicer{Bin: "ffmpeg"}
}

// Slice extracts one segment's bytes without re-encoding.
func (s *FFSlicer) Slice(ctx context.Context, data []byte, mimeType string, seg Segment) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.Bin,
		"-v", "error",
		"-ss", formatSeconds(seg.Start),
		"-t", formatSeconds(seg.Duration()),
		"-i", "pipe:0",
		"-c", "copy",
		"-f", containerFor(mimeType),
		"pipe:1")
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg segment %d: %w: %s", seg.Index, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func containerFor(mimeType string) string {
	mime := strings.ToLower(mimeType)
	switch {
	case strings.Contains(mime, "mpeg") && strings.HasPrefix(mime, "audio/"):
		return "mp3"
	case strings.Contains(mime, "wav"):
		return "wav"
	case strings.Contains(mime, "ogg"):
		return "ogg"
	case strings.Contains(mime, "flac"):
		return "flac"
	case strings.HasPrefix(mime, "audio/"):
		return "adts"
	default:
		return "matroska"
	}
}
