// Package content renders message text for display.
package content

var (
	// Individual transformers.
	normalizeNewlines = NormalizeNewlines()
	normalizeNBSP     = NormalizeNBSP()
	markdownToHTML    = MarkdownToHTML()
	sanitizeHTML      = SanitizeHTML()

	messageToHTMLPipeline = Chain(
		normalizeNewlines, normalizeNBSP, markdownToHTML, sanitizeHTML,
	)
)

// RenderMessage converts the Markdown text of a message into sanitized HTML
// that is safe to embed in a page.
func RenderMessage(text string) (string, error) {
	out, err := messageToHTMLPipeline([]byte(text))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
