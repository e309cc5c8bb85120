// SPDX-License-Identifier: MPL-2.0

package maven

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseCoordinate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Coordinate
		wantErr bool
	}{
		{in: "org.jetbrains:annotations:24.0.1", want: Coordinate{Group: "org.jetbrains", Artifact: "annotations", Version: "24.0.1"}},
		{in: "net.gudenau.cavegame:cavegame:0.0.0:logger", want: Coordinate{Group: "net.gudenau.cavegame", Artifact: "cavegame", Version: "0.0.0", Classifier: "logger"}},
		{in: "  org.ow2.asm:asm:9.5  ", want: Coordinate{Group: "org.ow2.asm", Artifact: "asm", Version: "9.5"}},
		{in: "org.jetbrains:annotations", wantErr: true},
		{in: "a:b:c:d:e", wantErr: true},
		{in: ":annotations:24.0.1", wantErr: true},
		{in: "org..jetbrains:annotations:24.0.1", wantErr: true},
		{in: "org.jetbrains:../../etc:24.0.1", wantErr: true},
		{in: "org.jetbrains:annotations:..", wantErr: true},
		{in: "org.jetbrains:con:1.0", wantErr: true},
		{in: "org.jetbrains:annotations:1.0:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCoordinate(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCoordinate) {
					t.Errorf("ParseCoordinate(%q) error = %v, want ErrInvalidCoordinate", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseCoordinate(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.want.String() {
				t.Errorf("String() = %q", got.String())
			}
		})
	}
}

func TestCoordinate_Paths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		coord   string
		relPath string
	}{
		{"org.jetbrains:annotations:24.0.1", "org/jetbrains/annotations/24.0.1/annotations-24.0.1.jar"},
		{"net.gudenau.cavegame:cavegame:0.0.0:logger", "net/gudenau/cavegame/cavegame/0.0.0/cavegame-0.0.0-logger.jar"},
		{"net.gudenau.cavegame.launcher:launcher:0.0.0", "net/gudenau/cavegame/launcher/launcher/0.0.0/launcher-0.0.0.jar"},
	}

	for _, tt := range tests {
		t.Run(tt.coord, func(t *testing.T) {
			t.Parallel()
			c := MustParseCoordinate(tt.coord)
			if got := c.RelPath(); got != tt.relPath {
				t.Errorf("RelPath() = %q, want %q", got, tt.relPath)
			}
			if got, want := c.LocalPath("libs"), filepath.Join("libs", filepath.FromSlash(tt.relPath)); got != want {
				t.Errorf("LocalPath() = %q, want %q", got, want)
			}
			if got, want := c.URL("https://repo1.maven.org/maven2/"), "https://repo1.maven.org/maven2/"+tt.relPath; got != want {
				t.Errorf("URL() = %q, want %q", got, want)
			}
		})
	}
}

func TestMustParseCoordinate_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("MustParseCoordinate should panic on bad input")
		}
	}()
	MustParseCoordinate("nope")
}
