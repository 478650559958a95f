package workorder

import (
	"encoding/json"
	"fmt"
)

// Capability enumerates the cross-dialect features a backend may support
// natively, emulate, or lack entirely. Ordinal order below is the
// discriminant order used when serializing a CapabilityManifest, matching
// the BTreeMap<Capability, _> iteration order of the reference contract.
type Capability string

const (
	CapabilityStreaming                  Capability = "streaming"
	CapabilityToolRead                   Capability = "tool_read"
	CapabilityToolWrite                  Capability = "tool_write"
	CapabilityToolEdit                   Capability = "tool_edit"
	CapabilityToolBash                   Capability = "tool_bash"
	CapabilityToolGlob                   Capability = "tool_glob"
	CapabilityToolGrep                   Capability = "tool_grep"
	CapabilityToolWebSearch              Capability = "tool_web_search"
	CapabilityToolWebFetch               Capability = "tool_web_fetch"
	CapabilityToolAskUser                Capability = "tool_ask_user"
	CapabilityHooksPreToolUse            Capability = "hooks_pre_tool_use"
	CapabilityHooksPostToolUse           Capability = "hooks_post_tool_use"
	CapabilitySessionResume              Capability = "session_resume"
	CapabilitySessionFork                Capability = "session_fork"
	CapabilityCheckpointing              Capability = "checkpointing"
	CapabilityStructuredOutputJSONSchema Capability = "structured_output_json_schema"
	CapabilityMcpClient                  Capability = "mcp_client"
	CapabilityMcpServer                  Capability = "mcp_server"
)

// capabilityOrdinal fixes the discriminant order used for deterministic
// CapabilityManifest serialization, independent of Go's native map
// iteration order and independent of Capability's lexicographic string
// order (which does not match the declared enum order, e.g. "streaming"
// sorts after "session_fork" alphabetically but must come first).
var capabilityOrdinal = map[Capability]int{
	CapabilityStreaming:                  0,
	CapabilityToolRead:                   1,
	CapabilityToolWrite:                  2,
	CapabilityToolEdit:                   3,
	CapabilityToolBash:                   4,
	CapabilityToolGlob:                   5,
	CapabilityToolGrep:                   6,
	CapabilityToolWebSearch:              7,
	CapabilityToolWebFetch:               8,
	CapabilityToolAskUser:                9,
	CapabilityHooksPreToolUse:            10,
	CapabilityHooksPostToolUse:           11,
	CapabilitySessionResume:              12,
	CapabilitySessionFork:                13,
	CapabilityCheckpointing:              14,
	CapabilityStructuredOutputJSONSchema: 15,
	CapabilityMcpClient:                  16,
	CapabilityMcpServer:                  17,
}

// MinSupport is the minimum support level a CapabilityRequirement will
// accept: Native demands first-class backend support, Emulated accepts a
// backend that covers the gap via the emulation engine.
type MinSupport string

const (
	MinSupportNative   MinSupport = "native"
	MinSupportEmulated MinSupport = "emulated"
)

// CapabilityRequirement names one capability a work order needs and the
// weakest support level that satisfies it.
type CapabilityRequirement struct {
	Capability Capability `json:"capability"`
	MinSupport MinSupport `json:"min_support"`
}

// CapabilityRequirements is the ordered list of requirements a WorkOrder
// declares against the projection matrix.
type CapabilityRequirements struct {
	Required []CapabilityRequirement `json:"required"`
}

// SupportLevel reports how well a backend covers a single Capability.
type SupportLevel struct {
	level  string
	reason string
}

var (
	SupportNative      = SupportLevel{level: "native"}
	SupportEmulated     = SupportLevel{level: "emulated"}
	SupportUnsupported = SupportLevel{level: "unsupported"}
)

// SupportRestricted builds a Restricted support level carrying the reason
// the capability is gated (e.g. "in beta").
func SupportRestricted(reason string) SupportLevel {
	return SupportLevel{level: "restricted", reason: reason}
}

// String renders the support level as a short human-readable label: the
// bare level name, or "restricted: <reason>" for Restricted.
func (s SupportLevel) String() string {
	if s.level == "restricted" {
		return "restricted: " + s.reason
	}
	return s.level
}

// IsNative reports whether the level is exactly Native.
func (s SupportLevel) IsNative() bool { return s.level == "native" }

// IsUnsupported reports whether the level is exactly Unsupported.
func (s SupportLevel) IsUnsupported() bool { return s.level == "unsupported" }

// Satisfies reports whether this support level meets the given minimum.
// Native satisfies both Native and Emulated requirements; Emulated
// satisfies only Emulated requirements; Unsupported and Restricted
// satisfy neither.
func (s SupportLevel) Satisfies(min MinSupport) bool {
	switch min {
	case MinSupportNative:
		return s.level == "native"
	case MinSupportEmulated:
		return s.level == "native" || s.level == "emulated"
	default:
		return false
	}
}

// MarshalJSON encodes Native/Emulated/Unsupported as bare strings and
// Restricted as {"restricted":{"reason":...}}.
func (s SupportLevel) MarshalJSON() ([]byte, error) {
	if s.level == "restricted" {
		return json.Marshal(map[string]any{
			"restricted": map[string]string{"reason": s.reason},
		})
	}
	return json.Marshal(s.level)
}

// UnmarshalJSON decodes either a bare string or a restricted object.
func (s *SupportLevel) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		switch str {
		case "native":
			*s = SupportNative
		case "emulated":
			*s = SupportEmulated
		case "unsupported":
			*s = SupportUnsupported
		default:
			return fmt.Errorf("workorder: unknown support level %q", str)
		}
		return nil
	}
	var restricted struct {
		Restricted struct {
			Reason string `json:"reason"`
		} `json:"restricted"`
	}
	if err := json.Unmarshal(data, &restricted); err != nil {
		return fmt.Errorf("workorder: decode support level: %w", err)
	}
	*s = SupportRestricted(restricted.Restricted.Reason)
	return nil
}

// CapabilityManifest maps each capability a backend was probed for to the
// support level it reported. Serialization follows the fixed discriminant
// order in capabilityOrdinal, not map iteration or key sort order.
type CapabilityManifest map[Capability]SupportLevel

// NewCapabilityManifest returns an empty manifest ready for inserts.
func NewCapabilityManifest() CapabilityManifest {
	return make(CapabilityManifest)
}

// MarshalJSON emits entries ordered by capabilityOrdinal.
func (m CapabilityManifest) MarshalJSON() ([]byte, error) {
	type entry struct {
		cap Capability
		ord int
	}
	entries := make([]entry, 0, len(m))
	for c := range m {
		entries = append(entries, entry{c, capabilityOrdinal[c]})
	}
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].ord > entries[j].ord; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
	buf := []byte{'{'}
	for i, e := range entries {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(string(e.cap))
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m[e.cap])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}
