// Package engine coordinates the version-diff and graph-analytics
// operations: it validates requests, reads through the provision store,
// invokes the core packages, and classifies every failure onto the
// stable lexerr code taxonomy before it crosses the engine boundary.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"lexver/internal/config"
	"lexver/internal/lexerr"
	"lexver/internal/logging"
	"lexver/internal/provision"
	"lexver/internal/radius"
	"lexver/internal/store"
)

// Engine is the coordination layer over the provision store.
type Engine struct {
	store  store.ProvisionStore
	config *config.Config
	logger *logging.Logger
}

// New creates an engine over the given store.
func New(st store.ProvisionStore, cfg *config.Config, logger *logging.Logger) *Engine {
	return &Engine{
		store:  st,
		config: cfg,
		logger: logger.Named("engine"),
	}
}

// Provenance identifies one engine request in logs and responses.
type Provenance struct {
	RequestID  string `json:"requestId"`
	DurationMs int64  `json:"durationMs"`
}

func newProvenance(start time.Time) Provenance {
	return Provenance{
		RequestID:  uuid.NewString(),
		DurationMs: time.Since(start).Milliseconds(),
	}
}

// classify maps an internal error onto the stable code taxonomy.
// Errors that already carry a code pass through untouched.
func classify(err error) *lexerr.Error {
	var le *lexerr.Error
	if errors.As(err, &le) {
		return le
	}
	switch {
	case errors.Is(err, provision.ErrRootNotFound), errors.Is(err, radius.ErrSeedNotFound):
		return lexerr.Wrap(lexerr.ProvisionNotFound, "provision not found", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return lexerr.Wrap(lexerr.Cancelled, "request cancelled", err)
	}
	return lexerr.Wrap(lexerr.Internal, "internal engine error", err)
}

// validateYearRange requires an earlier and a later snapshot year.
func validateYearRange(earlier, later int) *lexerr.Error {
	if earlier >= later {
		return lexerr.Newf(lexerr.InvalidYearRange, "year range %d..%d is not ascending", earlier, later)
	}
	return nil
}
