package markup

import "github.com/microcosm-cc/bluemonday"

var ugc = bluemonday.UGCPolicy()

// Sanitize strips markup that is unsafe in user-supplied help texts.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}
