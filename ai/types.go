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


package ai

// Media carries binary media content handed to a multimodal backend,
// together with its MIME type so the backend can decode it.
type Media struct {
	Data     []byte
	MIMEType string
}

// Transcript is the result of transcribing one media segment.
type Transcript struct {
	// Text is the verbatim transcript. It becomes the chunk content for
	// video and audio segments, which is what makes them full-text
	// searchable.
	Text string

	// Language is the detected or declared language code, when known.
	Language string

	// Model identifies the transcription model that produced the text.
	Model string

	// HasAudio reports whether the segment contained an audio track.
	// Segments without audio yield an empty transcript, not an error.
	HasAudio bool
}
