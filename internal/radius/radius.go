// Package radius computes the multi-hop impact radius of a seed
// provision: a bounded breadth-first traversal over hierarchy,
// cross-reference, and amendment edges.
//
// Cross-reference edges can be mutual or circular, so the traversal
// keeps an explicit visited-set; it is what guarantees termination and
// that every recorded distance is the shortest enabled-edge path.
package radius

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"lexver/internal/provision"
)

// ErrSeedNotFound is returned when the seed provision does not exist in
// the requested snapshot year.
var ErrSeedNotFound = errors.New("seed provision not found")

// Store is the read contract the traverser consumes.
type Store interface {
	FetchNode(ctx context.Context, id string, year int) (*provision.Row, error)
	FetchGraphEdges(ctx context.Context, id string, year int, types []provision.EdgeType) ([]provision.Edge, error)
	FetchChangeRecords(ctx context.Context, scopeIDs []string, yearStart, yearEnd int) ([]provision.ChangeRecord, error)
}

// Options configures a traversal. Depth is validated by the caller
// (1..3); edge-type flags select which edges the frontier may follow.
type Options struct {
	SeedID            string
	Year              int
	Depth             int
	IncludeHierarchy  bool
	IncludeReferences bool
	IncludeAmendments bool
}

func (o Options) edgeTypes() []provision.EdgeType {
	var types []provision.EdgeType
	if o.IncludeHierarchy {
		types = append(types, provision.EdgeHierarchy)
	}
	if o.IncludeReferences {
		types = append(types, provision.EdgeReference)
	}
	if o.IncludeAmendments {
		types = append(types, provision.EdgeAmendment)
	}
	return types
}

// Node is one provision reached by the traversal, enriched with its
// change record for its own snapshot year (unchanged/0 when none exists).
type Node struct {
	ID         string               `json:"id"`
	Label      string               `json:"label"`
	Heading    string               `json:"heading,omitempty"`
	Year       int                  `json:"year"`
	Distance   int                  `json:"distance"`
	ChangeType provision.ChangeType `json:"changeType"`
	Magnitude  float64              `json:"magnitude"`
	TextDelta  int                  `json:"textDelta"`
}

// Stats aggregates a traversal result.
type Stats struct {
	TotalNodes      int                          `json:"totalNodes"`
	MaxDepthReached int                          `json:"maxDepthReached"`
	ByChangeType    map[provision.ChangeType]int `json:"byChangeType"`
}

// Result is the traversal output. Incomplete is set when the context was
// cancelled mid-traversal; the node and edge sets accumulated up to that
// point are still valid (BFS yields a valid frontier at any cut).
type Result struct {
	Nodes      []Node           `json:"nodes"`
	Edges      []provision.Edge `json:"edges"`
	Stats      Stats            `json:"stats"`
	Incomplete bool             `json:"incomplete,omitempty"`
}

type visit struct {
	id   string
	year int
}

// Traverse runs the bounded BFS. The seed is always present at distance
// 0. Each node's distance is the length of the shortest path over the
// enabled edge types: first seen wins, no relaxation.
func Traverse(ctx context.Context, st Store, opts Options) (*Result, error) {
	seedRow, err := st.FetchNode(ctx, opts.SeedID, opts.Year)
	if err != nil {
		return nil, fmt.Errorf("fetch seed: %w", err)
	}
	if seedRow == nil {
		return nil, fmt.Errorf("%w: %s in %d", ErrSeedNotFound, opts.SeedID, opts.Year)
	}

	types := opts.edgeTypes()

	visited := map[string]*Node{
		opts.SeedID: nodeFromRow(seedRow, 0),
	}
	frontier := []visit{{opts.SeedID, opts.Year}}
	edgeSeen := make(map[string]bool)
	var edges []provision.Edge
	incomplete := false

expand:
	for depth := 0; depth < opts.Depth && len(frontier) > 0; depth++ {
		var next []visit
		for _, cur := range frontier {
			if ctx.Err() != nil {
				incomplete = true
				break expand
			}

			found, err := st.FetchGraphEdges(ctx, cur.id, cur.year, types)
			if err != nil {
				return nil, fmt.Errorf("fetch edges for %s: %w", cur.id, err)
			}
			for _, e := range found {
				otherID, otherYear, ok := e.Other(cur.id, cur.year)
				if !ok {
					continue
				}
				key := edgeKey(e)
				if !edgeSeen[key] {
					edgeSeen[key] = true
					edges = append(edges, e)
				}
				if _, seen := visited[otherID]; seen {
					continue
				}
				row, err := st.FetchNode(ctx, otherID, otherYear)
				if err != nil {
					return nil, fmt.Errorf("fetch node %s: %w", otherID, err)
				}
				n := &Node{ID: otherID, Label: otherID, Year: otherYear, Distance: depth + 1}
				if row != nil {
					n = nodeFromRow(row, depth+1)
				}
				visited[otherID] = n
				next = append(next, visit{otherID, otherYear})
			}
		}
		frontier = next
	}

	result := &Result{Edges: edges, Incomplete: incomplete}
	result.Nodes = make([]Node, 0, len(visited))
	for _, n := range visited {
		result.Nodes = append(result.Nodes, *n)
	}
	sort.Slice(result.Nodes, func(i, j int) bool {
		if result.Nodes[i].Distance != result.Nodes[j].Distance {
			return result.Nodes[i].Distance < result.Nodes[j].Distance
		}
		return result.Nodes[i].ID < result.Nodes[j].ID
	})
	sort.Slice(result.Edges, func(i, j int) bool {
		return edgeKey(result.Edges[i]) < edgeKey(result.Edges[j])
	})

	if incomplete {
		// The request context is already cancelled; return the partial
		// frontier without enrichment rather than failing the call.
		for i := range result.Nodes {
			result.Nodes[i].ChangeType = provision.ChangeUnchanged
		}
	} else if err := enrich(ctx, st, result); err != nil {
		return nil, err
	}

	result.Stats = computeStats(result.Nodes)
	return result, nil
}

// enrich attaches each node's change record for its own year. Records
// are fetched in one bulk call per distinct year touched.
func enrich(ctx context.Context, st Store, result *Result) error {
	byYear := make(map[int][]string)
	for _, n := range result.Nodes {
		byYear[n.Year] = append(byYear[n.Year], n.ID)
	}

	records := make(map[visit]provision.ChangeRecord)
	for year, ids := range byYear {
		recs, err := st.FetchChangeRecords(ctx, ids, year, year)
		if err != nil {
			return fmt.Errorf("fetch change records for %d: %w", year, err)
		}
		for _, r := range recs {
			records[visit{r.ID, r.Year}] = r
		}
	}

	for i := range result.Nodes {
		n := &result.Nodes[i]
		if rec, ok := records[visit{n.ID, n.Year}]; ok {
			n.ChangeType = rec.Type
			n.Magnitude = rec.Magnitude
			n.TextDelta = rec.TextDelta
		} else {
			n.ChangeType = provision.ChangeUnchanged
		}
	}
	return nil
}

func computeStats(nodes []Node) Stats {
	stats := Stats{
		TotalNodes:   len(nodes),
		ByChangeType: make(map[provision.ChangeType]int),
	}
	for _, n := range nodes {
		stats.ByChangeType[n.ChangeType]++
		if n.Distance > stats.MaxDepthReached {
			stats.MaxDepthReached = n.Distance
		}
	}
	return stats
}

func nodeFromRow(row *provision.Row, distance int) *Node {
	label := row.Num
	if label == "" {
		label = row.ID
	}
	return &Node{
		ID:       row.ID,
		Label:    label,
		Heading:  row.Heading,
		Year:     row.Year,
		Distance: distance,
	}
}

func edgeKey(e provision.Edge) string {
	return fmt.Sprintf("%s@%d|%s|%s@%d", e.From, e.FromYear, e.Type, e.To, e.ToYear)
}
