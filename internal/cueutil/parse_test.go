// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Settings: {
	name:   string
	count?: int & >=0
	remote: *true | bool
	items?: [...{id: string}]
}
`

type settings struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Remote bool   `json:"remote"`
}

func TestDecode_Struct(t *testing.T) {
	t.Parallel()

	got, err := Decode[settings]([]byte(testSchema), []byte(`name: "demo", count: 3`), "#Settings")
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	want := settings{Name: "demo", Count: 3, Remote: true}
	if got != want {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestDecode_MapKeepsOnlySetFields(t *testing.T) {
	t.Parallel()

	got, err := Decode[map[string]any]([]byte(testSchema), []byte(`name: "demo"`), "#Settings",
		WithConcrete(false))
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	if got["name"] != "demo" {
		t.Errorf("name = %v", got["name"])
	}
	if _, ok := got["count"]; ok {
		t.Error("unset optional field should be absent")
	}
	if got["remote"] != true {
		t.Errorf("remote = %v, want schema default true", got["remote"])
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		opts     []Option
		contains []string
	}{
		{
			name:     "syntax error",
			data:     `name: "demo`,
			contains: []string{"settings.cue"},
		},
		{
			name:     "wrong type",
			data:     `name: 42`,
			contains: []string{"settings.cue", "name"},
		},
		{
			name:     "constraint violation",
			data:     `name: "x", count: -1`,
			contains: []string{"settings.cue", "count"},
		},
		{
			name:     "unknown field is closed out",
			data:     `name: "x", colour: "red"`,
			contains: []string{"settings.cue", "colour"},
		},
		{
			name:     "nested list path",
			data:     `name: "x", items: [{id: "a"}, {id: 7}]`,
			contains: []string{"settings.cue", "items[1].id"},
		},
		{
			name:     "missing required field",
			data:     `count: 1`,
			contains: []string{"settings.cue", "name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := append([]Option{WithFilename("settings.cue")}, tt.opts...)
			_, err := Decode[settings]([]byte(testSchema), []byte(tt.data), "#Settings", opts...)
			if err == nil {
				t.Fatal("expected error")
			}
			for _, s := range tt.contains {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("error %q should contain %q", err, s)
				}
			}
		})
	}
}

func TestDecode_FileTooLarge(t *testing.T) {
	t.Parallel()

	_, err := Decode[settings]([]byte(testSchema), []byte(`name: "demo"`), "#Settings", WithMaxFileSize(4))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Decode() error = %v, want ErrFileTooLarge", err)
	}
}

func TestDecode_UnknownDefinition(t *testing.T) {
	t.Parallel()

	_, err := Decode[settings]([]byte(testSchema), []byte(`name: "demo"`), "#Missing")
	if err == nil || !strings.Contains(err.Error(), "#Missing") {
		t.Errorf("Decode() error = %v, want missing definition error", err)
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x.cue") != nil {
		t.Error("FormatError(nil) should be nil")
	}

	plain := errors.New("boom")
	err := FormatError(plain, "x.cue")
	if !errors.Is(err, plain) {
		t.Errorf("non-CUE errors should be wrapped, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "x.cue: ") {
		t.Errorf("error should start with the file name, got %q", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{path: nil, want: ""},
		{path: []string{"java"}, want: "java"},
		{path: []string{"java", "major"}, want: "java.major"},
		{path: []string{"libraries", "0", "coordinate"}, want: "libraries[0].coordinate"},
		{path: []string{"a", "0", "b", "12"}, want: "a[0].b[12]"},
		{path: []string{"0"}, want: "0"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "a.cue"); err != nil {
		t.Errorf("at limit: unexpected error %v", err)
	}
	err := CheckFileSize(make([]byte, 101), 100, "a.cue")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("over limit: error = %v", err)
	}
	for _, s := range []string{"a.cue", "101", "100"} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("error %q should contain %q", err, s)
		}
	}
}
