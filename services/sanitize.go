package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ugcPolicy = bluemonday.UGCPolicy()

// SanitizeContent strips markup that is unsafe to render from user supplied
// post and comment bodies.
func SanitizeContent(content string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(content))
}
