// Package index persists vector indexes as directories.
//
// Layout of a committed index directory:
//
//	<dir>/index.db   chunks, manifest and (sqlite backend) vectors
//	<dir>/vectors/   chromem collection (chromem backend)
//
// A build writes into a hidden sibling staging directory and is swapped
// into place on Commit, after the manifest has been written. Concurrent
// builds of the same directory are serialised by a lock file <dir>.lock.
package index
