package ui

import (
	"strings"
	"testing"
)

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"completed", string(Green)},
		{"ready", string(Green)},
		{"skipped", string(Yellow)},
		{"failed", string(Red)},
		{"missing", string(Red)},
		{"", string(White)},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := StatusColor(tt.status); string(got) != tt.want {
				t.Errorf("StatusColor(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestColorizeKeepsText(t *testing.T) {
	if got := Colorize("moved", Green); !strings.Contains(got, "moved") {
		t.Errorf("Colorize() = %q, lost the text", got)
	}
}
