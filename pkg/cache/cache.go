// Package cache provides pluggable byte caches for solved layouts and
// derived artifacts.
//
// A solve is deterministic for a given ruleset, inventory, plate, and
// parameter set, so its result can be cached aggressively: the CLI uses a
// file cache under the user cache directory, the HTTP service can point at
// Redis or MongoDB, and NullCache disables caching entirely.
//
// Keys are produced by a Keyer from SHA-256 content hashes, so any change to
// the inputs produces a different key and stale entries simply age out.
package cache

import (
	"context"
	"time"
)

// Cache TTLs by entry class.
const (
	// TTLSolve applies to solved layouts. Solves are pure functions of
	// their key, so this is generous.
	TTLSolve = 30 * 24 * time.Hour
	// TTLArtifact applies to derived artifacts (connectivity graphs).
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry TTLs. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns the cached data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the backend.
	Close() error
}

// SolveKeyOpts are the solve parameters that change the result and so must
// be part of the cache key.
type SolveKeyOpts struct {
	FloorWidth      int
	FloorHeight     int
	TreatmentRooms  int
	DoorSlots       int
	MinSharedWall   int
	Separation      int
	HiddenGap       int
	VisibleDistance int
	Seed            int64
}

// Keyer generates cache keys for the solve pipeline's stages.
type Keyer interface {
	// SolveKey keys a solved layout by the hash of the ruleset plus
	// inventory and the solve options.
	SolveKey(inputHash string, opts SolveKeyOpts) string
	// ArtifactKey keys a derived artifact by solution hash and format.
	ArtifactKey(solutionHash, format string) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SolveKey generates a key for a solved layout.
func (k *DefaultKeyer) SolveKey(inputHash string, opts SolveKeyOpts) string {
	return hashKey("solve", inputHash, opts)
}

// ArtifactKey generates a key for a derived artifact.
func (k *DefaultKeyer) ArtifactKey(solutionHash, format string) string {
	return hashKey("artifact", solutionHash, format)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
