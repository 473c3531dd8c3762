// Package coalesce deduplicates concurrent network operations that share a
// logical key, so a burst of identical lookups costs one round-trip.
package coalesce

import (
	"fmt"

	"golang.org/x/sync/singleflight"
)

// DefaultCoordPrecision rounds coordinates to ~11m, so map pans smaller than
// that share a list fetch. A coalescing heuristic, not an origin guarantee.
const DefaultCoordPrecision = 4

// Group runs at most one producer per key at a time. Concurrent callers for
// the same key all receive the single producer's outcome, success or failure,
// and the key is forgotten once the producer returns.
type Group struct {
	sf singleflight.Group
}

// Do executes fn under key, or joins an in-flight execution of the same key.
// shared reports whether the result was also delivered to other callers.
func (g *Group) Do(key string, fn func() (any, error)) (v any, shared bool, err error) {
	v, err, shared = g.sf.Do(key, fn)
	return v, shared, err
}

// ListKey builds the coalescing key for a coordinate-based list query,
// rounding both coordinates to precision decimal places.
func ListKey(lat, lon float64, precision int) string {
	if precision <= 0 {
		precision = DefaultCoordPrecision
	}
	return fmt.Sprintf("list:%.*f,%.*f", precision, lat, precision, lon)
}

// DetailKey builds the coalescing key for a per-camera detail lookup. The
// prefix keeps camera ids from ever colliding with coordinate keys.
func DetailKey(id string) string {
	return "cam:" + id
}
