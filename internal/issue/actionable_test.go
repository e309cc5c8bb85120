// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "verify runtime"},
			expected: "failed to verify runtime",
		},
		{
			name: "operation with resource",
			err: &ActionableError{
				Operation: "verify runtime",
				Resource:  "libs/com/java/java/20.0.2+9/jdk-20.0.2+9",
			},
			expected: "failed to verify runtime: libs/com/java/java/20.0.2+9/jdk-20.0.2+9",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "download runtime archive",
				Resource:  "https://api.adoptium.net/v3/binary",
				Cause:     errors.New("connection refused"),
			},
			expected: "failed to download runtime archive: https://api.adoptium.net/v3/binary: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	cause := errors.New("specific error")
	wrapped := &ActionableError{Operation: "test", Cause: cause}

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := NewErrorContext().
		WithKind(KindDecode).
		WithOperation("read checksum").
		WithSuggestion("Delete the cached jar").
		Wrap(errors.New("invalid hex digest")).
		Build()
	outer := &ActionableError{
		Operation:   "resolve libraries",
		Suggestions: []string{"Re-run with --refresh"},
		Cause:       inner,
	}

	plain := outer.Format(false)
	for _, want := range []string{"failed to resolve libraries", "• Re-run with --refresh", "• Delete the cached jar"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) should not include the error chain:\n%s", plain)
	}

	verbose := outer.Format(true)
	for _, want := range []string{"Kind: decode", "Error chain:", "1. failed to read checksum", "2. invalid hex digest"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return nil")
	}

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("fetch").
		WithResource("url").
		WithKind(KindNetwork).
		WithSuggestion("retry").
		Wrap(cause).
		Build()
	if ae.Operation != "fetch" || ae.Resource != "url" || ae.Kind != KindNetwork {
		t.Errorf("unexpected fields: %+v", ae)
	}
	if !ae.HasSuggestions() {
		t.Error("HasSuggestions() = false, want true")
	}
	if !errors.Is(ae, cause) {
		t.Error("built error should wrap its cause")
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	if Wrap(nil, KindNetwork, "fetch", "url") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	err := Wrap(errors.New("boom"), KindFilesystem, "create directory", "/tmp/x")
	if got := err.Error(); got != "failed to create directory: /tmp/x: boom" {
		t.Errorf("Error() = %q", got)
	}
	if KindOf(err) != KindFilesystem {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), KindFilesystem)
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain error", errors.New("x"), KindUnknown},
		{"direct", Wrap(errors.New("x"), KindDecode, "op", ""), KindDecode},
		{"fmt wrapped", fmt.Errorf("outer: %w", Wrap(errors.New("x"), KindNetwork, "op", "")), KindNetwork},
		{
			name: "unclassified outer",
			err:  &ActionableError{Operation: "outer", Cause: Wrap(errors.New("x"), KindEmptyResult, "inner", "")},
			want: KindEmptyResult,
		},
		{
			name: "outermost wins",
			err:  Wrap(Wrap(errors.New("x"), KindNetwork, "inner", ""), KindConfig, "outer", ""),
			want: KindConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	if KindEmptyResult.String() != "empty-result" {
		t.Errorf("String() = %q", KindEmptyResult.String())
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("String() = %q", Kind(99).String())
	}
}
