package handlers_test

import (
	"strings"
	"testing"

	"constitution-qa/internal/handlers"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "plain text",
			source: "The council meets monthly.",
			want:   "<p>The council meets monthly.</p>",
		},
		{
			name:   "emphasis",
			source: "See the **Election Commission** section.",
			want:   "<strong>Election Commission</strong>",
		},
		{
			name:   "list",
			source: "- Committees\n- Clubs",
			want:   "<li>Clubs</li>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := handlers.RenderMarkdown(tt.source)
			if err != nil {
				t.Fatalf("RenderMarkdown() unexpected error: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("RenderMarkdown(%q) = %q, want it to contain %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	got, err := handlers.RenderMarkdown("")
	if err != nil {
		t.Fatalf("RenderMarkdown() unexpected error: %v", err)
	}
	if strings.TrimSpace(got) != "" {
		t.Errorf("RenderMarkdown(\"\") = %q, want empty output", got)
	}
}
