package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases",
			input:    "Platform",
			expected: "platform",
		},
		{
			name:     "dots become hyphens",
			input:    "My Team.Name",
			expected: "my-team-name",
		},
		{
			name:     "run of separators collapses",
			input:    "core .. infra",
			expected: "core-infra",
		},
		{
			name:     "leading and trailing whitespace dropped",
			input:    "  SRE Team  ",
			expected: "sre-team",
		},
		{
			name:     "already a slug",
			input:    "backend-devs",
			expected: "backend-devs",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "tabs and newlines are separators",
			input:    "data\tplatform\nteam",
			expected: "data-platform-team",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.input); got != tt.expected {
				t.Errorf("Make(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMakeDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Make("My Team.Name"); got != "my-team-name" {
			t.Fatalf("Make is not deterministic: got %q", got)
		}
	}
}
