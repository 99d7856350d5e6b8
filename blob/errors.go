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
	"errors"
	"fmt"
)

// ErrObjectNotFound indicates the object no longer exists, e.g. it was
// deleted while its upload event was in flight. Never retried.
var ErrObjectNotFound = errors.New("object not found")

// TransientError wraps an I/O or network hiccup that may clear on retry.
type TransientError struct {
	Path string
	Err  error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient storage error reading %q: %v", e.Path, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Retryable marks transient I/O failures for bounded backoff at the call site.
func (e *TransientError) Retryable() bool { return true }
