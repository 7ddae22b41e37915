package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/attesthub/internal/app/system/htmlsanitize"
)

func TestStrip(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Acme Audit", "Acme Audit"},
		{"markup removed", "<b>Acme</b> Audit", "Acme Audit"},
		{"script removed", "Q3 SOC 2 Review<script>alert('x')</script>", "Q3 SOC 2 Review"},
		{"nested tags", "<div><p>Borealis <em>Compliance</em></p></div>", "Borealis Compliance"},
		{"attributes removed", `<a href="https://evil.example">Zephyr Audit</a>`, "Zephyr Audit"},
		{"whitespace trimmed", "  Acme Audit  ", "Acme Audit"},
		{"tags only", "<br/><hr/>", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := htmlsanitize.Strip(tc.input); got != tc.want {
				t.Errorf("Strip(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestStrip_ImageTagLeavesNothing(t *testing.T) {
	if got := htmlsanitize.Strip(`<img src="x" onerror="alert(1)">`); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}
