package airspace

import (
	"errors"
	"testing"
)

func TestErrorRecoverable(t *testing.T) {
	if InputMalformed.Recoverable() {
		t.Error("InputMalformed should not be recoverable")
	}
	if DatasetMissing.Recoverable() {
		t.Error("DatasetMissing should not be recoverable")
	}
	for _, k := range []ErrorKind{InputUnsupported, DatasetIncomplete, NetworkUnavailable, Timeout, Cancelled, Internal} {
		if !k.Recoverable() {
			t.Errorf("%v should be recoverable", k)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	underlying := errors.New("boom")
	wrapped := NewError(Internal, "wrapping", underlying)
	if !errors.Is(wrapped, underlying) {
		t.Errorf("errors.Is(wrapped, underlying) = false, want true")
	}
}

func TestErrorStringIncludesKindAndMessage(t *testing.T) {
	err := NewError(InputMalformed, "bad input", nil)
	if got := err.Error(); got != "InputMalformed: bad input" {
		t.Errorf("Error() = %q, want %q", got, "InputMalformed: bad input")
	}
}
