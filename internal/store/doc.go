// Package store persists speaker resolution runs in SQLite.
//
// Each run records the resolver output for one meeting; speaker_mappings
// keeps the suggested name next to the final name so a reviewer can confirm
// or correct a mapping later without losing what the resolver proposed.
// Writes are serialized through a lock file beside the database so concurrent
// CLI invocations do not interleave migrations or confirmations.
package store
