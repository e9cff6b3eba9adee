package profile

import (
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"development", Development, false},
		{"production", Production, false},
		{" Production ", Production, false},
		{"staging", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			var modeErr *InvalidModeError
			if !errors.As(err, &modeErr) {
				t.Errorf("ParseMode(%q) error = %v, want InvalidModeError", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestModeString(t *testing.T) {
	if Development.String() != "development" {
		t.Errorf("Development.String() = %q", Development.String())
	}
	if Production.String() != "production" {
		t.Errorf("Production.String() = %q", Production.String())
	}
	if Mode(42).String() != "unknown" {
		t.Errorf("Mode(42).String() = %q", Mode(42).String())
	}
}
