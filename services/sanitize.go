package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips every tag. User text is stored as plain text and
// rendered by clients, never interpreted as markup.
var textPolicy = bluemonday.StrictPolicy()

// SanitizeText removes markup and surrounding whitespace from user input
func SanitizeText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}
