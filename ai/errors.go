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

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch indicates a backend returned a vector whose
	// dimension differs from the configured one. This is a contract
	// violation, never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyResult indicates a backend returned no vector at all.
	ErrEmptyResult = errors.New("backend returned empty result")
)

// ServiceError wraps a failure from one of the AI backends. Backend and
// auth failures are transient from the pipeline's point of view: they are
// retried with backoff, and exhausted retries escalate to the enclosing
// processor's failure-aggregation logic.
type ServiceError struct {
	Backend string // "text-embedding", "multimodal-embedding", "transcription", "vision"
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Retryable marks backend failures as candidates for bounded retry.
func (e *ServiceError) Retryable() bool { return true }
