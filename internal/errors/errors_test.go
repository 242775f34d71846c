package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := New(ParseFailed, "bad file", nil)
	if e.Error() != "[PARSE_FAILED] bad file" {
		t.Errorf("unexpected message: %q", e.Error())
	}

	cause := errors.New("unexpected token")
	e = New(ParseFailed, "bad file", cause)
	want := "[PARSE_FAILED] bad file: unexpected token"
	if e.Error() != want {
		t.Errorf("got %q, want %q", e.Error(), want)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	e := New(ScanFailed, "cannot read", cause)

	if !errors.Is(e, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"direct", New(NotFound, "missing", nil), NotFound},
		{"wrapped", fmt.Errorf("while querying: %w", New(BudgetExceeded, "too big", nil)), BudgetExceeded},
		{"foreign", errors.New("plain"), InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	if !New(GraphDefect, "duplicate qualified name", nil).IsFatal() {
		t.Error("graph defects must be fatal")
	}
	for _, code := range []ErrorCode{ScanFailed, ParseFailed, BudgetExceeded, NotFound, SnapshotStale} {
		if New(code, "x", nil).IsFatal() {
			t.Errorf("%s must not be fatal", code)
		}
	}
}
