package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"validation", Validation(Field("title", "cannot be empty")), KindValidation},
		{"unauthenticated", Unauthenticated(), KindUnauthenticated},
		{"access denied", AccessDenied(), KindAccessDenied},
		{"not found", NotFound("task"), KindNotFound},
		{"conflict", Conflict("email already in use"), KindConflict},
		{"plain error", errors.New("boom"), KindInternal},
		{"nil-ish wrapped", fmt.Errorf("load: %w", NotFound("project")), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.expected {
				t.Errorf("KindOf() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAccessDenied_OpaqueMessage(t *testing.T) {
	err := AccessDenied()
	if err.Error() != "permission denied" {
		t.Errorf("AccessDenied message = %q, want %q", err.Error(), "permission denied")
	}
}

func TestValidation_FieldMessages(t *testing.T) {
	err := Validation(
		Field("title", "cannot be empty"),
		Field("priority", "invalid value %q", "urgent"),
	)

	if !IsValidation(err) {
		t.Fatal("Expected a validation error")
	}
	if len(err.Fields) != 2 {
		t.Fatalf("Expected 2 field errors, got %d", len(err.Fields))
	}
	msg := err.Error()
	if !strings.Contains(msg, "title: cannot be empty") {
		t.Errorf("Expected title message in %q", msg)
	}
	if !strings.Contains(msg, `priority: invalid value "urgent"`) {
		t.Errorf("Expected priority message in %q", msg)
	}
}

func TestClassifiers(t *testing.T) {
	if !IsNotFound(NotFound("comment")) {
		t.Error("IsNotFound should match NotFound errors")
	}
	if !IsAccessDenied(AccessDenied()) {
		t.Error("IsAccessDenied should match AccessDenied errors")
	}
	if !IsConflict(Conflict("dup")) {
		t.Error("IsConflict should match Conflict errors")
	}
	if IsNotFound(AccessDenied()) {
		t.Error("IsNotFound should not match AccessDenied errors")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindValidation, "validation_failed"},
		{KindUnauthenticated, "unauthenticated"},
		{KindAccessDenied, "access_denied"},
		{KindNotFound, "not_found"},
		{KindConflict, "conflict"},
		{KindInternal, "internal"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.expected)
		}
	}
}
