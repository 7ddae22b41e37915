// Package htmlsanitize strips markup from user-supplied display fields
// before they are stored.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Strip removes all HTML from s and trims surrounding whitespace.
func Strip(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
