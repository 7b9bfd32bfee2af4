package cli

import "testing"

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"empty output uses input stem", "", "plan.json", "plan"},
		{"empty output with path", "", "out/plan.json", "out/plan"},
		{"format extension stripped", "result.svg", "plan.json", "result"},
		{"json extension stripped", "result.json", "plan.json", "result"},
		{"unknown extension kept", "result.backup", "plan.json", "result.backup"},
		{"no extension kept", "result", "plan.json", "result"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}
