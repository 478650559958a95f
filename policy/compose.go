package policy

import (
	"fmt"

	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

// Precedence selects how a ComposedEngine reconciles disagreeing
// decisions from its member engines.
type Precedence string

const (
	// DenyOverrides denies if any member engine denies.
	DenyOverrides Precedence = "deny_overrides"
	// AllowOverrides allows if any member engine allows.
	AllowOverrides Precedence = "allow_overrides"
	// FirstApplicable takes the first member engine's decision verbatim.
	FirstApplicable Precedence = "first_applicable"
)

// ComposedEngine merges several PolicyProfiles' compiled engines behind
// one Precedence strategy.
type ComposedEngine struct {
	engines    []*Engine
	precedence Precedence
}

// NewComposedEngine compiles every profile and pairs the result with a
// precedence strategy. Fails if any profile contains an invalid pattern.
func NewComposedEngine(profiles []workorder.PolicyProfile, precedence Precedence) (*ComposedEngine, error) {
	engines := make([]*Engine, len(profiles))
	for i, p := range profiles {
		e, err := NewEngine(p)
		if err != nil {
			return nil, fmt.Errorf("policy: profile %d: %w", i, err)
		}
		engines[i] = e
	}
	return &ComposedEngine{engines: engines, precedence: precedence}, nil
}

func (c *ComposedEngine) resolve(decisions []Decision) Decision {
	switch c.precedence {
	case AllowOverrides:
		for _, d := range decisions {
			if d.Allowed {
				return allow()
			}
		}
		if len(decisions) == 0 {
			return allow()
		}
		return decisions[0]
	case FirstApplicable:
		if len(decisions) == 0 {
			return allow()
		}
		return decisions[0]
	case DenyOverrides:
		fallthrough
	default:
		for _, d := range decisions {
			if !d.Allowed {
				return d
			}
		}
		return allow()
	}
}

// CheckTool evaluates a tool-use check across every member engine.
func (c *ComposedEngine) CheckTool(name string) Decision {
	decisions := make([]Decision, len(c.engines))
	for i, e := range c.engines {
		decisions[i] = e.CanUseTool(name)
	}
	return c.resolve(decisions)
}

// CheckRead evaluates a path-read check across every member engine.
func (c *ComposedEngine) CheckRead(path string) Decision {
	decisions := make([]Decision, len(c.engines))
	for i, e := range c.engines {
		decisions[i] = e.CanReadPath(path)
	}
	return c.resolve(decisions)
}

// CheckWrite evaluates a path-write check across every member engine.
func (c *ComposedEngine) CheckWrite(path string) Decision {
	decisions := make([]Decision, len(c.engines))
	for i, e := range c.engines {
		decisions[i] = e.CanWritePath(path)
	}
	return c.resolve(decisions)
}

// MergeProfiles unions every list field across profiles, duplicating the
// teacher-style "most restrictive wins" merge semantics: the union of
// every allow/deny list is compiled into one engine by NewEngine.
func MergeProfiles(profiles []workorder.PolicyProfile) workorder.PolicyProfile {
	var merged workorder.PolicyProfile
	for _, p := range profiles {
		merged.AllowedTools = append(merged.AllowedTools, p.AllowedTools...)
		merged.DisallowedTools = append(merged.DisallowedTools, p.DisallowedTools...)
		merged.DenyRead = append(merged.DenyRead, p.DenyRead...)
		merged.DenyWrite = append(merged.DenyWrite, p.DenyWrite...)
		merged.AllowNetwork = append(merged.AllowNetwork, p.AllowNetwork...)
		merged.DenyNetwork = append(merged.DenyNetwork, p.DenyNetwork...)
		merged.RequireApprovalFor = append(merged.RequireApprovalFor, p.RequireApprovalFor...)
	}
	return merged
}
