// Package ir provides the canonical representation shared by every dimu
// package: hierarchical paths, object keys, the sealed value model used for
// snapshots, canonical JSON and domain-separated digests.
//
// ir imports nothing internal. Everything that needs to compare aggregates
// produced by independent workers goes through the canonical forms here, so
// two collections built in different processes or in a different order
// yield byte-identical snapshots and digests.
//
// Key design constraints:
//   - Path segments are NFC-normalised at construction
//   - Object keys are ordered by UTF-16 code units (RFC 8785)
//   - Floats are allowed in snapshots but must be finite
package ir
