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
	"context"
	"errors"
	"time"
)

// WithTimeout runs op under a deadline of d. The op receives a derived
// context and must honor its cancellation; every blocking call in the
// pipeline (storage reads, transcription, embedding, connection
// acquisition) goes through here.
//
// When the deadline expires the returned error is a *TimeoutError naming
// the operation, so callers can distinguish slowness from hard failure.
// Cancellation of the parent context is passed through untranslated.
func WithTimeout(ctx context.Context, name string, d time.Duration, op func(ctx context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := op(opCtx)
	if err == nil {
		return nil
	}

	// Only classify as timeout when our deadline fired, not the parent's.
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return &TimeoutError{Op: name, Limit: d}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
