// Package storage defines the durable key-value contract for the chapter
// engine.
//
// Chapter loss data, suspend records, and the telemetry journal are all
// stored as opaque values under string keys. Implementations (bbolt, sqlite,
// memory) live in subpackages; higher layers depend only on the KV
// interface so tests can swap in the in-memory store.
//
// # Error Types
//
//   - ErrNotFound: Indicates a requested key is missing. Absence of a
//     chapter's primary key is a normal "no data yet" condition for callers.
package storage
