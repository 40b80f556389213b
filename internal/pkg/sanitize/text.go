package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Text strips every HTML element from user supplied free text. The policy is
// safe for concurrent use.
type Text struct {
	policy *bluemonday.Policy
}

func NewText() *Text {
	return &Text{policy: bluemonday.StrictPolicy()}
}

func (t *Text) Clean(s string) string {
	if s == "" {
		return ""
	}
	// StrictPolicy escapes what it keeps; store plain text, not entities.
	return strings.TrimSpace(html.UnescapeString(t.policy.Sanitize(s)))
}
