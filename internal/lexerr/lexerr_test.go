package lexerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := New(InvalidDepth, "depth must be between 1 and 3")
	want := "[INVALID_DEPTH] depth must be between 1 and 3"
	if e.Error() != want {
		t.Errorf("got %q, want %q", e.Error(), want)
	}

	cause := errors.New("disk gone")
	wrapped := Wrap(StoreUnavailable, "opening corpus database", cause)
	if wrapped.Error() != "[STORE_UNAVAILABLE] opening corpus database: disk gone" {
		t.Errorf("unexpected wrapped format: %q", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	e := Wrap(Internal, "something broke", cause)
	if !errors.Is(e, cause) {
		t.Error("errors.Is must see through the wrap")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"direct", New(ProvisionNotFound, "x"), ProvisionNotFound},
		{"wrapped once", fmt.Errorf("outer: %w", New(InvalidYearRange, "x")), InvalidYearRange},
		{"wrapped twice", fmt.Errorf("a: %w", fmt.Errorf("b: %w", New(Cancelled, "x"))), Cancelled},
		{"plain error", errors.New("anonymous"), Internal},
		{"nil", nil, Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsCallerError(t *testing.T) {
	for _, code := range []Code{ProvisionNotFound, InvalidYearRange, InvalidDepth, InvalidGranularity, TreeTooLarge} {
		if !IsCallerError(code) {
			t.Errorf("%s should be a caller error", code)
		}
	}
	for _, code := range []Code{Cancelled, StoreUnavailable, Internal} {
		if IsCallerError(code) {
			t.Errorf("%s should not be a caller error", code)
		}
	}
}

func TestWithDetails(t *testing.T) {
	e := New(TreeTooLarge, "subtree too large").WithDetails(map[string]int{"rows": 50000})
	if e.Details == nil {
		t.Error("expected details to be attached")
	}
}
