// Package projection scores every registered backend against a work
// order's capability requirements and mapping features, and selects the
// best-fit backend plus an ordered fallback chain.
package projection

import (
	"fmt"
	"sort"

	"github.com/EffortlessMetrics/agent-backplane-sub000/registry"
	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

// HeuristicFidelityScore is the fidelity assigned to a (source, target)
// dialect pair when no mapping features were supplied but at least one
// mapping rule is registered for that pair — a coarse "we've translated
// this before" signal, less precise than a feature-weighted score.
// Exported as a named tunable rather than folded into the scoring
// arithmetic, so callers with different risk tolerances can read it; as a
// constant it cannot be overridden.
const HeuristicFidelityScore = 0.8

// BackendEntry is one backend registered with a ProjectionMatrix.
type BackendEntry struct {
	ID           string
	Manifest     workorder.CapabilityManifest
	EngineDialect registry.Dialect
	Priority     uint8
}

// EmulationEntry names one capability a selected backend cannot serve
// natively and the short label of the compensating mechanism, a simpler
// companion to the emulation package's richer Strategy tagged union.
type EmulationEntry struct {
	Capability workorder.Capability
	Strategy   string
}

// Score is the weighted breakdown behind a backend's Total ranking score.
type Score struct {
	CapabilityCoverage float64
	MappingFidelity    float64
	Priority           float64
	Total              float64
}

// RankedBackend is one entry of a ProjectionResult's fallback chain.
type RankedBackend struct {
	BackendID string
	Score     Score
}

// Result is the outcome of a successful Project call.
type Result struct {
	SelectedBackend    string
	FidelityScore      Score
	RequiredEmulations []EmulationEntry
	FallbackChain      []RankedBackend
}

// EmptyMatrixError reports that no backend was ever registered.
type EmptyMatrixError struct{}

func (e *EmptyMatrixError) Error() string { return "projection: matrix has no registered backends" }

// NoSuitableBackendError reports that every registered backend failed the
// work order's hard capability requirements.
type NoSuitableBackendError struct {
	Reason string
}

func (e *NoSuitableBackendError) Error() string {
	return fmt.Sprintf("projection: no suitable backend: %s", e.Reason)
}

// Matrix holds every registered backend plus the optional source dialect
// and mapping feature set used to score mapping fidelity.
type Matrix struct {
	backends        map[string]BackendEntry
	order           []string
	mappings        *registry.MappingRegistry
	sourceDialect   *registry.Dialect
	mappingFeatures []registry.Feature
}

// NewMatrix builds an empty matrix consulting the given MappingRegistry
// for fidelity scoring.
func NewMatrix(mappings *registry.MappingRegistry) *Matrix {
	return &Matrix{
		backends: make(map[string]BackendEntry),
		mappings: mappings,
	}
}

// RegisterBackend adds or replaces a backend entry. Registering the same
// ID twice keeps only the latest registration but preserves its original
// position in iteration order.
func (m *Matrix) RegisterBackend(entry BackendEntry) {
	if _, exists := m.backends[entry.ID]; !exists {
		m.order = append(m.order, entry.ID)
	}
	m.backends[entry.ID] = entry
}

// SetSourceDialect fixes the dialect a work order's conversation
// originated from, overriding any dialect named in
// work_order.config.vendor["abp"].source_dialect.
func (m *Matrix) SetSourceDialect(d registry.Dialect) {
	m.sourceDialect = &d
}

// SetMappingFeatures fixes the set of translation features the caller
// cares about when scoring mapping fidelity. Without this call, fidelity
// falls back to the same-dialect / heuristic rule.
func (m *Matrix) SetMappingFeatures(features []registry.Feature) {
	m.mappingFeatures = features
}

func (m *Matrix) resolveSourceDialect(wo *workorder.WorkOrder) *registry.Dialect {
	if m.sourceDialect != nil {
		return m.sourceDialect
	}
	if wo == nil {
		return nil
	}
	abp, ok := wo.Config.Vendor["abp"].(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := abp["source_dialect"].(string)
	if !ok || raw == "" {
		return nil
	}
	d := registry.Dialect(raw)
	return &d
}

func isPassthrough(wo *workorder.WorkOrder) bool {
	if wo == nil {
		return false
	}
	abp, ok := wo.Config.Vendor["abp"].(map[string]any)
	if !ok {
		return false
	}
	mode, _ := abp["mode"].(string)
	return mode == "passthrough"
}

func maxPriority(backends map[string]BackendEntry) uint8 {
	var max uint8
	for _, b := range backends {
		if b.Priority > max {
			max = b.Priority
		}
	}
	return max
}

// coverage returns the fraction of required capabilities the manifest
// satisfies, the emulation entries for any satisfied-only-via-emulation
// requirement, and false if any requirement is flatly unsupported.
func coverage(manifest workorder.CapabilityManifest, reqs []workorder.CapabilityRequirement) (float64, []EmulationEntry, bool) {
	if len(reqs) == 0 {
		return 1.0, nil, true
	}
	var satisfied int
	var emulations []EmulationEntry
	for _, req := range reqs {
		level, ok := manifest[req.Capability]
		if !ok {
			level = workorder.SupportUnsupported
		}
		if level.IsUnsupported() {
			return 0, nil, false
		}
		if !level.Satisfies(req.MinSupport) {
			return 0, nil, false
		}
		satisfied++
		if !level.IsNative() {
			emulations = append(emulations, EmulationEntry{Capability: req.Capability, Strategy: "adapter"})
		}
	}
	return float64(satisfied) / float64(len(reqs)), emulations, true
}

func (m *Matrix) mappingFidelity(src *registry.Dialect, tgt registry.Dialect) float64 {
	if src == nil {
		return 1.0
	}
	if *src == tgt {
		return 1.0
	}
	if len(m.mappingFeatures) > 0 && m.mappings != nil {
		var lossless, supported int
		for _, f := range m.mappingFeatures {
			rule, ok := m.mappings.Lookup(*src, tgt, f)
			if !ok {
				continue
			}
			if rule.Fidelity.IsLossless() {
				lossless++
			}
			if rule.Fidelity.IsSupported() {
				supported++
			}
		}
		n := float64(len(m.mappingFeatures))
		return 0.7*(float64(lossless)/n) + 0.3*(float64(supported)/n)
	}
	if m.mappings != nil && hasAnyRule(m.mappings, *src, tgt) {
		return HeuristicFidelityScore
	}
	return 0.0
}

func hasAnyRule(reg *registry.MappingRegistry, src, tgt registry.Dialect) bool {
	for _, r := range reg.Rules() {
		if r.SourceDialect == src && r.TargetDialect == tgt {
			return true
		}
	}
	return false
}

// Project scores every registered backend against the work order and
// returns the best-fit selection plus a descending fallback chain.
func (m *Matrix) Project(wo *workorder.WorkOrder) (Result, error) {
	if len(m.backends) == 0 {
		return Result{}, &EmptyMatrixError{}
	}

	srcDialect := m.resolveSourceDialect(wo)
	passthroughBonus := isPassthrough(wo)
	maxPrio := maxPriority(m.backends)

	type candidate struct {
		id         string
		score      Score
		emulations []EmulationEntry
	}
	var candidates []candidate
	var rejectReasons []string

	for _, id := range m.order {
		entry := m.backends[id]
		cov, emulations, ok := coverage(entry.Manifest, wo.Requirements.Required)
		if !ok {
			rejectReasons = append(rejectReasons, fmt.Sprintf("%s: missing a required capability", id))
			continue
		}
		fidelity := m.mappingFidelity(srcDialect, entry.EngineDialect)
		var prioScore float64 = 1.0
		if maxPrio != 0 {
			prioScore = float64(entry.Priority) / float64(maxPrio)
		}
		total := 0.5*cov + 0.3*fidelity + 0.2*prioScore
		if passthroughBonus && srcDialect != nil && entry.EngineDialect == *srcDialect {
			total += 0.15
		}
		candidates = append(candidates, candidate{
			id: id,
			score: Score{
				CapabilityCoverage: cov,
				MappingFidelity:    fidelity,
				Priority:           prioScore,
				Total:              total,
			},
			emulations: emulations,
		})
	}

	if len(candidates) == 0 {
		reason := "no backend satisfies the declared capability requirements"
		if len(rejectReasons) > 0 {
			reason = rejectReasons[0]
		}
		return Result{}, &NoSuitableBackendError{Reason: reason}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score.Total != candidates[j].score.Total {
			return candidates[i].score.Total > candidates[j].score.Total
		}
		return candidates[i].id < candidates[j].id
	})

	best := candidates[0]
	fallback := make([]RankedBackend, 0, len(candidates)-1)
	for _, c := range candidates[1:] {
		fallback = append(fallback, RankedBackend{BackendID: c.id, Score: c.score})
	}

	return Result{
		SelectedBackend:    best.id,
		FidelityScore:      best.score,
		RequiredEmulations: best.emulations,
		FallbackChain:      fallback,
	}, nil
}
