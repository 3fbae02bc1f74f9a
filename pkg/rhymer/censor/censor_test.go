package censor

import "testing"

func TestLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"nothing to see here", "nothing to see here"},
		{"my nigga my nigga", "my n*gga my n*gga"},
		{"fag and faggot", "f*g and f*ggot"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Line(tt.in); got != tt.want {
			t.Errorf("Line(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLinesInPlace(t *testing.T) {
	lines := []string{"clean line", "fag"}
	got := Lines(lines)
	if got[0] != "clean line" || got[1] != "f*g" || lines[1] != "f*g" {
		t.Errorf("Lines = %v", got)
	}
}

func TestRulesIsCopy(t *testing.T) {
	r := Rules()
	r[0].Mask = "changed"
	if Line("nigg") != "n*gg" {
		t.Error("mutating Rules() must not change the filter")
	}
}
