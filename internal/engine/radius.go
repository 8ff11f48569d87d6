package engine

import (
	"context"
	"time"

	"lexver/internal/lexerr"
	"lexver/internal/radius"
)

// RadiusRequest asks for the impact radius of one seed provision.
// Depth zero means the configured default; the edge-type flags default
// to all three when none is set.
type RadiusRequest struct {
	SeedID            string `json:"seedId"`
	Year              int    `json:"year"`
	Depth             int    `json:"depth,omitempty"`
	IncludeHierarchy  bool   `json:"includeHierarchy,omitempty"`
	IncludeReferences bool   `json:"includeReferences,omitempty"`
	IncludeAmendments bool   `json:"includeAmendments,omitempty"`
}

// RadiusResult carries the traversal output.
type RadiusResult struct {
	SeedID     string         `json:"seedId"`
	Year       int            `json:"year"`
	Depth      int            `json:"depth"`
	Radius     *radius.Result `json:"radius"`
	Provenance Provenance     `json:"provenance"`
}

// ImpactRadius runs the bounded breadth-first traversal from the seed.
// A cancelled traversal returns the partial frontier with
// Radius.Incomplete set rather than an error.
func (e *Engine) ImpactRadius(ctx context.Context, req RadiusRequest) (*RadiusResult, error) {
	start := time.Now()

	depth := req.Depth
	if depth == 0 {
		depth = e.config.Traversal.DefaultDepth
	}
	if depth < 1 || depth > e.config.Traversal.MaxDepth {
		return nil, lexerr.Newf(lexerr.InvalidDepth,
			"depth %d outside 1..%d", depth, e.config.Traversal.MaxDepth)
	}

	opts := radius.Options{
		SeedID:            req.SeedID,
		Year:              req.Year,
		Depth:             depth,
		IncludeHierarchy:  req.IncludeHierarchy,
		IncludeReferences: req.IncludeReferences,
		IncludeAmendments: req.IncludeAmendments,
	}
	if !req.IncludeHierarchy && !req.IncludeReferences && !req.IncludeAmendments {
		opts.IncludeHierarchy = true
		opts.IncludeReferences = true
		opts.IncludeAmendments = true
	}

	res, err := radius.Traverse(ctx, e.store, opts)
	if err != nil {
		return nil, classify(err)
	}

	result := &RadiusResult{
		SeedID:     req.SeedID,
		Year:       req.Year,
		Depth:      depth,
		Radius:     res,
		Provenance: newProvenance(start),
	}

	e.logger.Info("Impact radius completed", map[string]interface{}{
		"seedId":     req.SeedID,
		"year":       req.Year,
		"depth":      depth,
		"nodes":      res.Stats.TotalNodes,
		"incomplete": res.Incomplete,
		"requestId":  result.Provenance.RequestID,
	})
	return result, nil
}
