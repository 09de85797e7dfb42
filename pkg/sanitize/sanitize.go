// Package sanitize strips dangerous markup from user-authored content before it
// is persisted. Story bodies are markdown but may embed raw HTML; comments are
// plain text. Rendering happens client-side, so the store must never hold
// script-bearing content.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	bodyPolicy    = bluemonday.UGCPolicy()
	commentPolicy = bluemonday.StrictPolicy()
)

// Body sanitizes a story body: UGC-safe HTML subset, everything else stripped
func Body(s string) string {
	return strings.TrimSpace(bodyPolicy.Sanitize(s))
}

// Comment sanitizes a comment body down to plain text
func Comment(s string) string {
	return strings.TrimSpace(commentPolicy.Sanitize(s))
}
