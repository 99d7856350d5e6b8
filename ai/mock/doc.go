// Package mock provides test doubles for the ai package interfaces.
//
// The mocks generate deterministic vectors and transcripts so tests are
// reproducible without external AI services. Behavior can be overridden per
// test via the exported function fields.
package mock
