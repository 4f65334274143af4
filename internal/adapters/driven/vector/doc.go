// Package vector groups the driven.VectorIndex implementations.
//
//   - chromem: persistent, pure Go, backed by chromem-go
//   - memory: brute-force cosine search over vectors held in memory
package vector
