package registry

import "sort"

// Feature names a cross-dialect translation concern a MappingRule can
// grade, e.g. "thinking_signature" or "tool_call_id". It is deliberately
// broader than workorder.Capability: some mapping concerns (a thinking
// block's provenance signature, a synthesized tool-call id) have no
// backend-capability counterpart, only a translation-fidelity one.
type Feature string

// Fidelity grades how well a MappingRule's target dialect preserves a
// feature originated by the source dialect.
type Fidelity struct {
	kind    string
	warning string
	reason  string
}

var Lossless = Fidelity{kind: "lossless"}

// LossyLabeled builds a Fidelity describing a defined, named degradation.
func LossyLabeled(warning string) Fidelity {
	return Fidelity{kind: "lossy_labeled", warning: warning}
}

// FidelityUnsupported builds a Fidelity describing an untranslatable
// feature, with a human-readable reason.
func FidelityUnsupported(reason string) Fidelity {
	return Fidelity{kind: "unsupported", reason: reason}
}

// IsLossless reports whether the fidelity is exactly Lossless.
func (f Fidelity) IsLossless() bool { return f.kind == "lossless" }

// IsSupported reports whether the fidelity is Lossless or LossyLabeled
// (i.e. not Unsupported).
func (f Fidelity) IsSupported() bool { return f.kind != "unsupported" }

// Warning returns the LossyLabeled warning text, or "" for other kinds.
func (f Fidelity) Warning() string { return f.warning }

// Reason returns the Unsupported reason text, or "" for other kinds.
func (f Fidelity) Reason() string { return f.reason }

// MappingRule records the translation fidelity of one feature when
// moving a conversation from SourceDialect to TargetDialect.
type MappingRule struct {
	SourceDialect Dialect
	TargetDialect Dialect
	Feature       Feature
	Fidelity      Fidelity
}

type mappingKey struct {
	src, tgt Dialect
	feature  Feature
}

// MappingRegistry indexes MappingRules by (source, target, feature) for
// exact lookup and supports ranking candidate target dialects by how
// losslessly they carry a set of required features.
type MappingRegistry struct {
	rules map[mappingKey]MappingRule
}

// NewMappingRegistry returns an empty registry with every dialect's
// self-mapping bootstrapped as Lossless for the given feature set — a
// dialect always perfectly round-trips its own features.
func NewMappingRegistry(bootstrapFeatures []Feature) *MappingRegistry {
	r := &MappingRegistry{rules: make(map[mappingKey]MappingRule)}
	for _, d := range AllDialects {
		for _, f := range bootstrapFeatures {
			r.Add(MappingRule{SourceDialect: d, TargetDialect: d, Feature: f, Fidelity: Lossless})
		}
	}
	return r
}

// Add inserts or replaces a mapping rule.
func (r *MappingRegistry) Add(rule MappingRule) {
	r.rules[mappingKey{rule.SourceDialect, rule.TargetDialect, rule.Feature}] = rule
}

// Lookup returns the rule for (src, tgt, feature), if one is registered.
func (r *MappingRegistry) Lookup(src, tgt Dialect, feature Feature) (MappingRule, bool) {
	rule, ok := r.rules[mappingKey{src, tgt, feature}]
	return rule, ok
}

// RankedTarget is one entry of RankTargets' result: a candidate dialect
// and how many of the requested features it carries losslessly.
type RankedTarget struct {
	Dialect       Dialect
	LosslessCount int
}

// Rules returns every registered rule in deterministic order (source,
// then target, then feature, all lexicographic), for callers that need
// to enumerate the whole registry rather than look up one triple — the
// "mapping" CLI dump, in particular.
func (r *MappingRegistry) Rules() []MappingRule {
	rules := make([]MappingRule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.SourceDialect != b.SourceDialect {
			return a.SourceDialect < b.SourceDialect
		}
		if a.TargetDialect != b.TargetDialect {
			return a.TargetDialect < b.TargetDialect
		}
		return a.Feature < b.Feature
	})
	return rules
}

// RankTargets scores every dialect other than src by how many of
// features it carries with Lossless fidelity, descending. A feature with
// no registered rule for a given (src, candidate) pair contributes zero.
// Returns nil when features is empty.
func (r *MappingRegistry) RankTargets(src Dialect, features []Feature) []RankedTarget {
	if len(features) == 0 {
		return nil
	}
	var ranked []RankedTarget
	for _, d := range AllDialects {
		if d == src {
			continue
		}
		count := 0
		for _, f := range features {
			if rule, ok := r.Lookup(src, d, f); ok && rule.Fidelity.IsLossless() {
				count++
			}
		}
		ranked = append(ranked, RankedTarget{Dialect: d, LosslessCount: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].LosslessCount != ranked[j].LosslessCount {
			return ranked[i].LosslessCount > ranked[j].LosslessCount
		}
		return ranked[i].Dialect < ranked[j].Dialect
	})
	return ranked
}

// FeatureResult is one entry of ValidateMapping's result.
type FeatureResult struct {
	Feature  Feature
	Fidelity Fidelity
	Err      error
}

// ValidateMapping classifies every feature's support when translating
// from src to tgt. A feature with no registered rule produces an error
// rather than a silent Unsupported, so callers can tell "checked and
// incompatible" apart from "never evaluated".
func (r *MappingRegistry) ValidateMapping(src, tgt Dialect, features []Feature) []FeatureResult {
	results := make([]FeatureResult, 0, len(features))
	for _, f := range features {
		rule, ok := r.Lookup(src, tgt, f)
		if !ok {
			results = append(results, FeatureResult{
				Feature: f,
				Err:     &NoRuleError{Source: src, Target: tgt, Feature: f},
			})
			continue
		}
		results = append(results, FeatureResult{Feature: f, Fidelity: rule.Fidelity})
	}
	return results
}

// NoRuleError reports that no mapping rule exists for a (source, target,
// feature) triple.
type NoRuleError struct {
	Source, Target Dialect
	Feature        Feature
}

func (e *NoRuleError) Error() string {
	return "registry: no mapping rule for " + string(e.Source) + " -> " + string(e.Target) + " feature " + string(e.Feature)
}
