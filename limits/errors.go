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


package limits

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidMaxAttempts is returned when a retry is requested with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")

	// ErrInvalidLimit is returned when a truncation limit is not positive.
	ErrInvalidLimit = errors.New("limit must be greater than zero")
)

// TimeoutError reports that an operation exceeded its time budget.
// It is classified distinctly from other failures so callers can apply
// different retry and escalation policy to slow backends.
type TimeoutError struct {
	Op    string        // short operation name, e.g. "embed-text"
	Limit time.Duration // the budget that was exceeded
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %q exceeded %s timeout", e.Op, e.Limit)
}

// Retryable marks timeouts as transiently retryable. Callers bound the
// number of attempts; exhausted retries escalate to fatal per unit of work.
func (e *TimeoutError) Retryable() bool { return true }

// retryable is implemented by error types that may succeed on retry.
type retryable interface {
	Retryable() bool
}

// Retryable reports whether err may succeed if the operation is retried.
// Error types opt in by implementing a Retryable() bool method; everything
// else is treated as fatal.
func Retryable(err error) bool {
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
