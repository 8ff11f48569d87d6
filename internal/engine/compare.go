package engine

import (
	"context"
	"time"

	"lexver/internal/hierdiff"
	"lexver/internal/inlinediff"
	"lexver/internal/lexerr"
	"lexver/internal/provision"
)

// CompareRequest asks for a hierarchical diff of one provision subtree
// between two snapshot years.
type CompareRequest struct {
	RootID      string `json:"rootId"`
	YearOld     int    `json:"yearOld"`
	YearNew     int    `json:"yearNew"`
	Granularity string `json:"granularity,omitempty"`
}

// CompareResult carries the classified diff tree.
type CompareResult struct {
	RootID      string                 `json:"rootId"`
	YearOld     int                    `json:"yearOld"`
	YearNew     int                    `json:"yearNew"`
	Granularity inlinediff.Granularity `json:"granularity"`
	Root        *hierdiff.DiffNode     `json:"root"`
	Provenance  Provenance             `json:"provenance"`
}

// CompareHierarchical diffs the subtree at RootID between YearOld and
// YearNew. A root absent in exactly one year yields a whole-subtree
// added or removed result; absent in both years it is an error.
func (e *Engine) CompareHierarchical(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	start := time.Now()

	if err := validateYearRange(req.YearOld, req.YearNew); err != nil {
		return nil, err
	}
	granularity := inlinediff.Granularity(req.Granularity)
	if granularity == "" {
		granularity = inlinediff.Granularity(e.config.Diff.DefaultGranularity)
	}
	if !granularity.Valid() {
		return nil, lexerr.Newf(lexerr.InvalidGranularity, "unknown granularity %q", req.Granularity)
	}

	oldRows, err := e.store.FetchSubtree(ctx, req.RootID, req.YearOld)
	if err != nil {
		return nil, classify(err)
	}
	newRows, err := e.store.FetchSubtree(ctx, req.RootID, req.YearNew)
	if err != nil {
		return nil, classify(err)
	}

	if len(oldRows) == 0 && len(newRows) == 0 {
		return nil, lexerr.Newf(lexerr.ProvisionNotFound,
			"provision %s not found in %d or %d", req.RootID, req.YearOld, req.YearNew)
	}
	if max := e.config.Diff.MaxTreeRows; len(oldRows) > max || len(newRows) > max {
		return nil, lexerr.Newf(lexerr.TreeTooLarge,
			"subtree %s exceeds %d rows; narrow the root", req.RootID, max).
			WithDetails(map[string]int{"oldRows": len(oldRows), "newRows": len(newRows), "max": max})
	}

	var oldRoot, newRoot *provision.Node
	if len(oldRows) > 0 {
		if oldRoot, err = provision.BuildTree(req.RootID, oldRows); err != nil {
			return nil, classify(err)
		}
	}
	if len(newRows) > 0 {
		if newRoot, err = provision.BuildTree(req.RootID, newRows); err != nil {
			return nil, classify(err)
		}
	}

	root, err := hierdiff.Diff(ctx, oldRoot, newRoot, hierdiff.Options{Granularity: granularity})
	if err != nil {
		return nil, classify(err)
	}

	result := &CompareResult{
		RootID:      req.RootID,
		YearOld:     req.YearOld,
		YearNew:     req.YearNew,
		Granularity: granularity,
		Root:        root,
		Provenance:  newProvenance(start),
	}

	e.logger.Info("Hierarchical compare completed", map[string]interface{}{
		"rootId":     req.RootID,
		"yearOld":    req.YearOld,
		"yearNew":    req.YearNew,
		"requestId":  result.Provenance.RequestID,
		"durationMs": result.Provenance.DurationMs,
	})
	return result, nil
}
