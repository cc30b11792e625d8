package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseResultSet,
				Kind:   KindInvariant,
				Path:   []string{"root", "schema"},
				Detail: "offset=0 but payload schema has 3 entries",
			},
			contains: []string{"[resultset]", "invariant", "root.schema", "offset=0"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseIndex,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[index]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseEngine,
				Kind:   KindCompile,
				Detail: "module rejected",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[engine]", "compile", "module rejected", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseArena,
		Kind:  KindAllocation,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseModuleBuild,
		Kind:  KindValidation,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseModuleBuild, Kind: KindValidation}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseEngine, Kind: KindValidation}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseModuleBuild, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseModuleBuild, Kind: KindValidation}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseHost, KindGuestInsist).
		Path("query", "filter").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "true", "false").
		Build()

	if err.Phase != PhaseHost {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseHost)
	}
	if err.Kind != KindGuestInsist {
		t.Errorf("Kind = %v, want %v", err.Kind, KindGuestInsist)
	}
	if len(err.Path) != 2 || err.Path[0] != "query" || err.Path[1] != "filter" {
		t.Errorf("Path = %v, want [query filter]", err.Path)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected true, got false" {
		t.Errorf("Detail = %v, want 'expected true, got false'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Invariant", func(t *testing.T) {
		err := Invariant(PhaseArena, "heap pointer %d not page-aligned", 4097)
		if err.Kind != KindInvariant {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvariant)
		}
		if !containsSubstring(err.Detail, "4097") {
			t.Errorf("Detail = %v, should contain value", err.Detail)
		}
	})

	t.Run("UnknownContext", func(t *testing.T) {
		err := UnknownContext(7)
		if err.Kind != KindUnknownContext {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownContext)
		}
		if err.Phase != PhaseRegistry {
			t.Errorf("Phase = %v, want %v", err.Phase, PhaseRegistry)
		}
		if err.Value != int32(7) {
			t.Errorf("Value = %v, want 7", err.Value)
		}
	})

	t.Run("GuestInsist", func(t *testing.T) {
		err := GuestInsist("query.wasm", 42, "index out of range")
		if err.Kind != KindGuestInsist {
			t.Errorf("Kind = %v, want %v", err.Kind, KindGuestInsist)
		}
		if !containsSubstring(err.Detail, "query.wasm:42") {
			t.Errorf("Detail = %v, should contain file:line", err.Detail)
		}
	})

	t.Run("ValidationFailed", func(t *testing.T) {
		err := ValidationFailed("type mismatch at func 3")
		if err.Kind != KindValidation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindValidation)
		}
	})

	t.Run("CompileFailed", func(t *testing.T) {
		cause := errors.New("invalid opcode")
		err := CompileFailed(cause)
		if err.Kind != KindCompile {
			t.Errorf("Kind = %v, want %v", err.Kind, KindCompile)
		}
		if !errors.Is(err.Cause, cause) {
			t.Errorf("Cause not preserved")
		}
	})

	t.Run("InstantiateFailed", func(t *testing.T) {
		err := InstantiateFailed(errors.New("missing import"))
		if err.Kind != KindInstantiate {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInstantiate)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseIndex, "index", "orders_by_customer")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		err := InvalidInput(PhaseCodegen, "unsupported operator kind %d", 99)
		if err.Kind != KindInvalidInput {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseResultSet, []string{"tuple"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseIndex, "bool key type on recursive-model index")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseArena, 1024, 8)
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !containsSubstring(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})
}

func TestGuestException(t *testing.T) {
	tests := []struct {
		kind GuestExceptionKind
		want string
	}{
		{ExcOutOfRange, "out_of_range"},
		{ExcDivByZero, "div_by_zero"},
		{ExcTypeMismatch, "type_mismatch"},
		{ExcConstraintViolation, "constraint_violation"},
		{ExcUser, "user"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}

	e := NewGuestException(ExcDivByZero, "query.wasm", 12, "divisor was zero")
	msg := e.Error()
	if !containsSubstring(msg, "query.wasm:12") {
		t.Errorf("message = %v, missing file:line", msg)
	}
	if !containsSubstring(msg, "div_by_zero") {
		t.Errorf("message = %v, missing kind", msg)
	}
	if !containsSubstring(msg, "divisor was zero") {
		t.Errorf("message = %v, missing user message", msg)
	}
}

func containsSubstring(s, substr string) bool {
	if substr == "" {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
