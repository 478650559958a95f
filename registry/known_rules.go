package registry

// Feature names used by the known-rule bootstrap. These correspond to
// the translation concerns documented in the per-dialect fidelity table:
// how a dialect carries the system prompt, tool calls, and chain-of-
// thought across a lift/lower round trip.
const (
	FeatureSystemPrompt      Feature = "system_prompt"
	FeatureToolCall          Feature = "tool_call"
	FeatureThinking          Feature = "thinking"
	FeatureThinkingSignature Feature = "thinking_signature"
	FeatureToolRole          Feature = "tool_role"
)

// bootstrapFeatureSet is every feature self-mapping is bootstrapped for.
var bootstrapFeatureSet = []Feature{
	FeatureSystemPrompt, FeatureToolCall, FeatureThinking, FeatureThinkingSignature, FeatureToolRole,
}

// NewDefaultRegistry returns a MappingRegistry seeded with every
// dialect's lossless self-mapping plus the known cross-dialect fidelity
// rules observed in the dialect lifters/lowerers (see the dialect
// package): documented, stable degradations such as Codex dropping
// System/User on lowering, Gemini synthesizing tool-call correlation
// ids, and Copilot coalescing the Tool role into User.
func NewDefaultRegistry() *MappingRegistry {
	r := NewMappingRegistry(bootstrapFeatureSet)

	r.Add(MappingRule{DialectOpenAI, DialectClaude, FeatureSystemPrompt, Lossless})
	r.Add(MappingRule{DialectOpenAI, DialectClaude, FeatureToolCall, Lossless})
	r.Add(MappingRule{DialectOpenAI, DialectClaude, FeatureThinking,
		FidelityUnsupported("OpenAI has no native thinking block")})

	r.Add(MappingRule{DialectOpenAI, DialectGemini, FeatureSystemPrompt, Lossless})
	r.Add(MappingRule{DialectOpenAI, DialectGemini, FeatureToolCall, Lossless})
	r.Add(MappingRule{DialectOpenAI, DialectGemini, FeatureThinking,
		FidelityUnsupported("OpenAI has no native thinking block")})

	r.Add(MappingRule{DialectClaude, DialectOpenAI, FeatureSystemPrompt, Lossless})
	r.Add(MappingRule{DialectClaude, DialectOpenAI, FeatureToolCall, Lossless})
	r.Add(MappingRule{DialectClaude, DialectOpenAI, FeatureThinking,
		LossyLabeled("thinking text folded into assistant text, no distinct block")})
	r.Add(MappingRule{DialectClaude, DialectOpenAI, FeatureThinkingSignature,
		FidelityUnsupported("OpenAI has no signature concept")})

	r.Add(MappingRule{DialectClaude, DialectCodex, FeatureSystemPrompt,
		FidelityUnsupported("Codex from_ir drops System and User messages; they are inputs, not outputs")})
	r.Add(MappingRule{DialectClaude, DialectCodex, FeatureToolCall, Lossless})
	r.Add(MappingRule{DialectClaude, DialectCodex, FeatureThinking,
		LossyLabeled("Thinking maps to Reasoning{Summary:[{Text}]}, losing block granularity")})
	r.Add(MappingRule{DialectClaude, DialectCodex, FeatureThinkingSignature,
		FidelityUnsupported("Codex Reasoning items carry no signature field")})

	r.Add(MappingRule{DialectGemini, DialectOpenAI, FeatureSystemPrompt, Lossless})
	r.Add(MappingRule{DialectGemini, DialectOpenAI, FeatureToolCall,
		LossyLabeled("Gemini function calls carry no native id; lift synthesizes gemini_<name>, so repeated calls to one tool share an id")})
	r.Add(MappingRule{DialectGemini, DialectOpenAI, FeatureThinking,
		LossyLabeled("thinking flattened to plain text parts")})

	for _, src := range AllDialects {
		if src == DialectCopilot {
			continue
		}
		r.Add(MappingRule{src, DialectCopilot, FeatureSystemPrompt,
			LossyLabeled("system message dropped if absent, otherwise carried as a message")})
		r.Add(MappingRule{src, DialectCopilot, FeatureToolRole,
			LossyLabeled("IR Tool role coalesced into an OpenAI-compatible user message")})
		r.Add(MappingRule{src, DialectCopilot, FeatureThinking,
			LossyLabeled("thinking flattened to plain text")})
	}

	return r
}
