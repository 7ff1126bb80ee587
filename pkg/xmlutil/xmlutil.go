// Package xmlutil escapes user text before it is embedded in the
// XML-delimited sections of a canvas generation prompt, so a request like
// "items about <request>" cannot break out of its tag.
package xmlutil

import (
	"encoding/xml"
	"strings"
)

// Escape replaces the characters with special meaning in XML. A generation
// request passes through here before being wrapped in its prompt tag.
func Escape(s string) string {
	var buf strings.Builder
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		// EscapeText only fails on invalid UTF-8; return original on error.
		return s
	}
	return buf.String()
}
