// Package store provides access to the immutable yearly snapshots of
// the provision corpus. The read contract consumed by the diff and
// graph engines is the ProvisionStore interface; the shipped backend is
// SQLite, with an in-memory implementation for tests.
package store

import (
	"context"

	"lexver/internal/provision"
)

// ProvisionStore is the read-only repository contract over immutable
// yearly snapshots.
type ProvisionStore interface {
	// FetchSubtree returns the root row and every row beneath it for one
	// year, in document order, via a single prefix query.
	FetchSubtree(ctx context.Context, rootID string, year int) ([]provision.Row, error)

	// FetchNode returns one row, or nil when (id, year) does not exist.
	FetchNode(ctx context.Context, id string, year int) (*provision.Row, error)

	// FetchChangeRecords returns change records in the inclusive year
	// range. A record is in scope when its id equals a scope entry or
	// lies in that entry's subtree; an empty scope matches everything.
	FetchChangeRecords(ctx context.Context, scopeIDs []string, yearStart, yearEnd int) ([]provision.ChangeRecord, error)

	// FetchGraphEdges returns the edges of the requested types touching
	// (id, year). Hierarchy edges are derived from the id structure;
	// reference and amendment edges are stored explicitly.
	FetchGraphEdges(ctx context.Context, id string, year int, types []provision.EdgeType) ([]provision.Edge, error)
}
