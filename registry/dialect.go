// Package registry implements the capability and mapping registries: the
// static tables that decide which backend can serve a request, with what
// fidelity, and which missing features must be emulated.
package registry

// Dialect identifies one of the six vendor wire formats a conversation
// can be lifted from or lowered to.
type Dialect string

const (
	DialectOpenAI  Dialect = "openai"
	DialectClaude  Dialect = "claude"
	DialectGemini  Dialect = "gemini"
	DialectCodex   Dialect = "codex"
	DialectKimi    Dialect = "kimi"
	DialectCopilot Dialect = "copilot"
)

// AllDialects is the fixed set of dialects this build translates between,
// in a stable order used to bootstrap self-mapping rules.
var AllDialects = []Dialect{
	DialectOpenAI, DialectClaude, DialectGemini, DialectCodex, DialectKimi, DialectCopilot,
}
