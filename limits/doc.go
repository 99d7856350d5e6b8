// Package limits provides the input-bounding and time-bounding primitives
// shared by every external call in the ingestion pipeline:
//   - deterministic token-based and byte-based truncation for model input limits
//   - a generic timeout wrapper that classifies deadline expiry distinctly
//   - bounded retry with exponential backoff
//
// No operation in the pipeline may block unboundedly; every blocking call
// site goes through WithTimeout, and every retry loop goes through
// RetryWithBackoff.
package limits
