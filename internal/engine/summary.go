package engine

import (
	"context"
	"sort"
	"time"

	"lexver/internal/provision"
)

// SummaryRequest asks for per-year change totals in a scope.
type SummaryRequest struct {
	ScopeID   string `json:"scopeId,omitempty"`
	YearStart int    `json:"yearStart"`
	YearEnd   int    `json:"yearEnd"`
}

// YearSummary aggregates one snapshot year's change records.
type YearSummary struct {
	Year         int                          `json:"year"`
	TotalChanges int                          `json:"totalChanges"`
	ByChangeType map[provision.ChangeType]int `json:"byChangeType"`
	// NetTextDelta is the signed sum of character deltas across the
	// year's records: positive years grew the corpus.
	NetTextDelta int `json:"netTextDelta"`
}

// SummaryResult carries the per-year aggregates, ascending by year.
// Years with no changes in scope are omitted.
type SummaryResult struct {
	ScopeID    string        `json:"scopeId,omitempty"`
	YearStart  int           `json:"yearStart"`
	YearEnd    int           `json:"yearEnd"`
	Years      []YearSummary `json:"years"`
	Provenance Provenance    `json:"provenance"`
}

// ChangeSummary aggregates change records per year over the requested
// range, optionally restricted to one provision subtree.
func (e *Engine) ChangeSummary(ctx context.Context, req SummaryRequest) (*SummaryResult, error) {
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

	byYear := make(map[int]*YearSummary)
	for _, r := range records {
		s := byYear[r.Year]
		if s == nil {
			s = &YearSummary{Year: r.Year, ByChangeType: make(map[provision.ChangeType]int)}
			byYear[r.Year] = s
		}
		s.TotalChanges++
		s.ByChangeType[r.Type]++
		s.NetTextDelta += r.TextDelta
	}

	years := make([]YearSummary, 0, len(byYear))
	for _, s := range byYear {
		years = append(years, *s)
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })

	result := &SummaryResult{
		ScopeID:    req.ScopeID,
		YearStart:  req.YearStart,
		YearEnd:    req.YearEnd,
		Years:      years,
		Provenance: newProvenance(start),
	}

	e.logger.Info("Change summary completed", map[string]interface{}{
		"scopeId":   req.ScopeID,
		"yearStart": req.YearStart,
		"yearEnd":   req.YearEnd,
		"years":     len(years),
		"requestId": result.Provenance.RequestID,
	})
	return result, nil
}
