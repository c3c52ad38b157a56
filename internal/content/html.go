package content

import (
	"bytes"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// nbspPattern matches both the HTML entity &nbsp; (case insensitive) and the
// actual unicode non-breaking space character (U+00A0).
var nbspPattern = regexp.MustCompile("(?i)&nbsp;|\xc2\xa0")

// NormalizeNBSP replaces non-breaking space entities and characters with
// regular spaces.
func NormalizeNBSP() TransformerFunc {
	return func(input []byte) ([]byte, error) {
		return nbspPattern.ReplaceAll(input, []byte{' '}), nil
	}
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines() TransformerFunc {
	return func(input []byte) ([]byte, error) {
		input = bytes.ReplaceAll(input, []byte("\r\n"), []byte("\n"))
		return bytes.ReplaceAll(input, []byte("\r"), []byte("\n")), nil
	}
}

// SanitizeHTML applies sanitization rules to HTML input, stripping unsupported
// tags and attributes.
func SanitizeHTML() TransformerFunc {
	htmlSanitizer := sanitizer()
	return func(input []byte) ([]byte, error) {
		return htmlSanitizer.SanitizeBytes(input), nil
	}
}

// sanitizer is a reduced [bluemonday.UGCPolicy] for short chat messages:
//
//   - Target _blank and noreferrer for links
//   - Inline formatting, paragraphs, quotes, code and lists only
//   - No headings, tables or images
func sanitizer() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()

	policy.AllowStandardURLs()
	policy.RequireNoReferrerOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	policy.AllowElements(
		"b",
		"blockquote",
		"br",
		"code",
		"del",
		"em",
		"i",
		"p",
		"pre",
		"s",
		"strong",
		"u",
	)

	policy.AllowAttrs("href").
		OnElements("a")

	policy.AllowLists()

	return policy
}
