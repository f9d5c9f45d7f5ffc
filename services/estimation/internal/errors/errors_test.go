package errors_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	domainerrors "souk/services/estimation/internal/errors"

	goerrors "github.com/go-errors/errors"
)

func TestDomainError_Error(t *testing.T) {
	cases := []struct {
		name string
		err  *domainerrors.DomainError
		want string
	}{
		{"no cause", domainerrors.InvalidInput("missing jobId", nil), "INVALID_INPUT: missing jobId"},
		{"with cause", domainerrors.Unavailable("cache", errors.New("dial tcp")), "UNAVAILABLE: cache: dial tcp"},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("%s: Error() = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestNew_CapturesStack(t *testing.T) {
	err := domainerrors.Internal("boom", nil)
	if len(err.StackTrace()) == 0 {
		t.Fatal("StackTrace() is empty")
	}
	if !strings.Contains(string(err.StackTrace()), "TestNew_CapturesStack") {
		t.Errorf("stack does not mention the caller:\n%s", err.StackTrace())
	}
}

func TestNew_ReusesWrappedStack(t *testing.T) {
	cause := goerrors.New("root cause")
	err := domainerrors.Internal("wrapped", fmt.Errorf("context: %w", cause))
	if string(err.Stack) != string(cause.Stack()) {
		t.Error("expected the stack of the wrapped go-errors error to be reused")
	}
}

func TestUnwrapAndIsType(t *testing.T) {
	cause := errors.New("bad json")
	err := fmt.Errorf("handle message: %w", domainerrors.InvalidInput("decode event", cause))

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
	if !domainerrors.IsType(err, domainerrors.ErrTypeInvalidInput) {
		t.Error("IsType(INVALID_INPUT) = false")
	}
	if domainerrors.IsType(err, domainerrors.ErrTypeNotFound) {
		t.Error("IsType(NOT_FOUND) = true")
	}
	if domainerrors.IsType(cause, domainerrors.ErrTypeInvalidInput) {
		t.Error("IsType on a plain error = true")
	}
}

func TestIsType_NestedDomainErrors(t *testing.T) {
	inner := domainerrors.Unavailable("redis", errors.New("timeout"))
	outer := domainerrors.Internal("save estimate", inner)

	if !domainerrors.IsType(outer, domainerrors.ErrTypeUnavailable) {
		t.Error("IsType should find the inner type")
	}
	if got := domainerrors.TypeOf(outer); got != domainerrors.ErrTypeInternal {
		t.Errorf("TypeOf = %s, want INTERNAL", got)
	}
	if got := domainerrors.TypeOf(errors.New("plain")); got != domainerrors.ErrTypeInternal {
		t.Errorf("TypeOf(plain) = %s, want INTERNAL", got)
	}
	if got := domainerrors.TypeOf(inner); got != domainerrors.ErrTypeUnavailable {
		t.Errorf("TypeOf(inner) = %s", got)
	}
}
