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


// Package ingest turns uploaded files into persisted, embedded chunks.
//
// A storage-change event enters through the Pipeline, which resolves the
// document record, fetches the payload, and routes it by content type to
// one of four processors: document, video, audio, image. Each processor
// emits chunk drafts; the pipeline persists them as one transactional
// batch and sets the document's terminal status. Segment-level work for
// video and audio runs on a bounded worker pool.
package ingest
