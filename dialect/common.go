package dialect

import (
	"strings"

	"github.com/EffortlessMetrics/agent-backplane-sub000/ir"
)

// flattenText concatenates every Text/Thinking block's payload in blocks,
// in order, with no separator. Unlike ir.Message.TextContent, which takes
// Text blocks only, it also includes Thinking text. Used by lowerers that need the plain-text
// payload nested inside a ToolResult's own content sequence.
func flattenText(blocks []ir.ContentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		switch v := b.(type) {
		case ir.Text:
			sb.WriteString(v.Text)
		case ir.Thinking:
			sb.WriteString(v.Text)
		}
	}
	return sb.String()
}

// imagePlaceholder is the degraded text a lifter substitutes for a
// URL-referenced image. A dialect lowerer only ever emits base64-embedded
// images, never a URL reference, but some dialects' native request shapes
// allow a caller to supply one, and the lifter must not drop it silently.
func imagePlaceholder(url string) string {
	return "[image: " + url + "]"
}
