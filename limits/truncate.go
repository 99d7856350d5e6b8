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
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the tokenizer shared by the embedding backends.
const encodingName = "cl100k_base"

// TokenCodec counts, truncates and slices text on token boundaries.
// It is safe for concurrent use.
type TokenCodec struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCodec loads the shared tokenizer.
func NewTokenCodec() (*TokenCodec, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("loading %s encoding: %w", encodingName, err)
	}
	return &TokenCodec{enc: enc}, nil
}

// Count returns the number of tokens in text.
func (c *TokenCodec) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// Encode converts text into its token sequence.
func (c *TokenCodec) Encode(text string) []int {
	return c.enc.Encode(text, nil, nil)
}

// Decode converts a token sequence back into text.
func (c *TokenCodec) Decode(tokens []int) string {
	return c.enc.Decode(tokens)
}

// TruncateTokens deterministically truncates text to at most limit tokens.
// It returns the truncated text along with the original and resulting token
// counts so call sites can log when truncation occurred.
func (c *TokenCodec) TruncateTokens(text string, limit int) (string, int, int, error) {
	if limit <= 0 {
		return "", 0, 0, ErrInvalidLimit
	}

	tokens := c.enc.Encode(text, nil, nil)
	original := len(tokens)
	if original <= limit {
		return text, original, original, nil
	}

	return c.enc.Decode(tokens[:limit]), original, limit, nil
}

// TruncateBytes deterministically truncates s to at most limit bytes without
// splitting a multi-byte UTF-8 sequence. The result is always valid UTF-8
// when the input is.
func TruncateBytes(s string, limit int) (string, error) {
	if limit <= 0 {
		return "", ErrInvalidLimit
	}
	if len(s) <= limit {
		return s, nil
	}

	// Back up to the start of the rune straddling the cut point.
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], nil
}
