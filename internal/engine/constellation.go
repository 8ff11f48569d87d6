package engine

import (
	"context"
	"time"

	"lexver/internal/constellation"
	"lexver/internal/provision"
)

// ConstellationRequest asks for change clusters over a year range.
type ConstellationRequest struct {
	ScopeID      string   `json:"scopeId,omitempty"`
	SectionNum   string   `json:"sectionNum,omitempty"`
	YearStart    int      `json:"yearStart"`
	YearEnd      int      `json:"yearEnd"`
	ChangeTypes  []string `json:"changeTypes,omitempty"`
	MinMagnitude float64  `json:"minMagnitude,omitempty"`
}

// ConstellationResult carries the deterministic cluster grouping.
type ConstellationResult struct {
	YearStart     int                   `json:"yearStart"`
	YearEnd       int                   `json:"yearEnd"`
	Constellation *constellation.Result `json:"constellation"`
	Provenance    Provenance            `json:"provenance"`
}

// Constellation groups the change records in the requested window into
// same-year, same-parent clusters. An empty result is not an error.
func (e *Engine) Constellation(ctx context.Context, req ConstellationRequest) (*ConstellationResult, error) {
	start := time.Now()

	if err := validateYearRange(req.YearStart, req.YearEnd); err != nil {
		return nil, err
	}

	var scope []string
	if req.ScopeID != "" {
		scope = []string{req.ScopeID}
	}
	records, err := e.store.FetchChangeRecords(ctx, scope, req.YearStart, req.YearEnd)
	if err != nil {
		return nil, classify(err)
	}

	types := make([]provision.ChangeType, 0, len(req.ChangeTypes))
	for _, t := range req.ChangeTypes {
		types = append(types, provision.ChangeType(t))
	}

	res := constellation.Build(records, constellation.Options{
		ScopeID:      req.ScopeID,
		SectionNum:   req.SectionNum,
		YearStart:    req.YearStart,
		YearEnd:      req.YearEnd,
		ChangeTypes:  types,
		MinMagnitude: req.MinMagnitude,
	})

	result := &ConstellationResult{
		YearStart:     req.YearStart,
		YearEnd:       req.YearEnd,
		Constellation: res,
		Provenance:    newProvenance(start),
	}

	e.logger.Info("Constellation completed", map[string]interface{}{
		"yearStart": req.YearStart,
		"yearEnd":   req.YearEnd,
		"clusters":  len(res.Clusters),
		"requestId": result.Provenance.RequestID,
	})
	return result, nil
}
