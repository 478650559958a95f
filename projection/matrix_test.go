package projection

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EffortlessMetrics/agent-backplane-sub000/registry"
	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

func manifestAllNative(caps ...workorder.Capability) workorder.CapabilityManifest {
	m := workorder.NewCapabilityManifest()
	for _, c := range caps {
		m[c] = workorder.SupportNative
	}
	return m
}

func basicWorkOrder(reqs ...workorder.CapabilityRequirement) *workorder.WorkOrder {
	return &workorder.WorkOrder{
		Config:       workorder.NewRuntimeConfig(),
		Requirements: workorder.CapabilityRequirements{Required: reqs},
	}
}

func TestEmptyMatrixErrors(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	_, err := m.Project(basicWorkOrder())
	require.Error(t, err)
	require.IsType(t, &EmptyMatrixError{}, err)
}

func TestNoSuitableBackendWhenCapabilityUnsupported(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	m.RegisterBackend(BackendEntry{
		ID:           "claude",
		Manifest:     manifestAllNative(workorder.CapabilityToolRead),
		EngineDialect: registry.DialectClaude,
		Priority:     50,
	})
	wo := basicWorkOrder(workorder.CapabilityRequirement{
		Capability: workorder.CapabilityStreaming,
		MinSupport: workorder.MinSupportNative,
	})
	_, err := m.Project(wo)
	require.Error(t, err)
	require.IsType(t, &NoSuitableBackendError{}, err)
}

func TestExactMatchSingleBackendSelected(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	m.RegisterBackend(BackendEntry{
		ID:           "claude",
		Manifest:     manifestAllNative(workorder.CapabilityToolRead, workorder.CapabilityToolWrite),
		EngineDialect: registry.DialectClaude,
		Priority:     50,
	})
	wo := basicWorkOrder(workorder.CapabilityRequirement{
		Capability: workorder.CapabilityToolRead,
		MinSupport: workorder.MinSupportNative,
	})
	result, err := m.Project(wo)
	require.NoError(t, err)
	require.Equal(t, "claude", result.SelectedBackend)
	require.Empty(t, result.FallbackChain)
}

func TestEmulatedSupportSatisfiesEmulatedRequirementAndIsReported(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	manifest := workorder.NewCapabilityManifest()
	manifest[workorder.CapabilityStreaming] = workorder.SupportEmulated
	m.RegisterBackend(BackendEntry{ID: "codex", Manifest: manifest, EngineDialect: registry.DialectCodex, Priority: 10})
	wo := basicWorkOrder(workorder.CapabilityRequirement{
		Capability: workorder.CapabilityStreaming,
		MinSupport: workorder.MinSupportEmulated,
	})
	result, err := m.Project(wo)
	require.NoError(t, err)
	require.Equal(t, "codex", result.SelectedBackend)
	require.Len(t, result.RequiredEmulations, 1)
	require.Equal(t, workorder.CapabilityStreaming, result.RequiredEmulations[0].Capability)
}

func TestEmulatedSupportFailsNativeRequirement(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	manifest := workorder.NewCapabilityManifest()
	manifest[workorder.CapabilityStreaming] = workorder.SupportEmulated
	m.RegisterBackend(BackendEntry{ID: "codex", Manifest: manifest, EngineDialect: registry.DialectCodex, Priority: 10})
	wo := basicWorkOrder(workorder.CapabilityRequirement{
		Capability: workorder.CapabilityStreaming,
		MinSupport: workorder.MinSupportNative,
	})
	_, err := m.Project(wo)
	require.Error(t, err)
}

func TestPriorityZeroIsValidWithSingleBackend(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	m.RegisterBackend(BackendEntry{ID: "only", Manifest: manifestAllNative(), EngineDialect: registry.DialectOpenAI, Priority: 0})
	result, err := m.Project(basicWorkOrder())
	require.NoError(t, err)
	require.Equal(t, "only", result.SelectedBackend)
	require.Equal(t, 1.0, result.FidelityScore.Priority)
}

func TestSelectBackendPicksBestOverallByPriority(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	m.RegisterBackend(BackendEntry{ID: "openai", Manifest: manifestAllNative(), EngineDialect: registry.DialectOpenAI, Priority: 60})
	m.RegisterBackend(BackendEntry{ID: "claude", Manifest: manifestAllNative(), EngineDialect: registry.DialectClaude, Priority: 50})
	result, err := m.Project(basicWorkOrder())
	require.NoError(t, err)
	require.Equal(t, "openai", result.SelectedBackend)
	require.InDelta(t, 1.0, result.FidelityScore.Priority, 0.0001)
	require.Len(t, result.FallbackChain, 1)
	require.Equal(t, "claude", result.FallbackChain[0].BackendID)
	require.InDelta(t, 0.833, result.FallbackChain[0].Score.Priority, 0.001)
}

func TestTieBreakIsLexicographicBackendID(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	m.RegisterBackend(BackendEntry{ID: "zeta", Manifest: manifestAllNative(), EngineDialect: registry.DialectOpenAI, Priority: 50})
	m.RegisterBackend(BackendEntry{ID: "alpha", Manifest: manifestAllNative(), EngineDialect: registry.DialectOpenAI, Priority: 50})
	result, err := m.Project(basicWorkOrder())
	require.NoError(t, err)
	require.Equal(t, "alpha", result.SelectedBackend)
}

func TestSameDialectFidelityIsPerfect(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	m.SetSourceDialect(registry.DialectClaude)
	m.RegisterBackend(BackendEntry{ID: "claude", Manifest: manifestAllNative(), EngineDialect: registry.DialectClaude, Priority: 1})
	result, err := m.Project(basicWorkOrder())
	require.NoError(t, err)
	require.Equal(t, 1.0, result.FidelityScore.MappingFidelity)
}

func TestNoSourceDialectDefaultsFidelityToOne(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	m.RegisterBackend(BackendEntry{ID: "claude", Manifest: manifestAllNative(), EngineDialect: registry.DialectClaude, Priority: 1})
	result, err := m.Project(basicWorkOrder())
	require.NoError(t, err)
	require.Equal(t, 1.0, result.FidelityScore.MappingFidelity)
}

func TestMappingFidelityNoFeaturesUsesHeuristic(t *testing.T) {
	reg := registry.NewMappingRegistry([]registry.Feature{"system_prompt"})
	reg.Add(registry.MappingRule{
		SourceDialect: registry.DialectOpenAI, TargetDialect: registry.DialectClaude,
		Feature: "tool_call", Fidelity: registry.Lossless,
	})
	m := NewMatrix(reg)
	m.SetSourceDialect(registry.DialectOpenAI)
	m.RegisterBackend(BackendEntry{ID: "claude", Manifest: manifestAllNative(), EngineDialect: registry.DialectClaude, Priority: 1})
	result, err := m.Project(basicWorkOrder())
	require.NoError(t, err)
	require.InDelta(t, HeuristicFidelityScore, result.FidelityScore.MappingFidelity, 0.0001)
}

func TestMappingFidelityNoMappingAtAllIsZero(t *testing.T) {
	reg := registry.NewMappingRegistry(nil)
	m := NewMatrix(reg)
	m.SetSourceDialect(registry.DialectOpenAI)
	m.RegisterBackend(BackendEntry{ID: "claude", Manifest: manifestAllNative(), EngineDialect: registry.DialectClaude, Priority: 1})
	result, err := m.Project(basicWorkOrder())
	require.NoError(t, err)
	require.Equal(t, 0.0, result.FidelityScore.MappingFidelity)
}

func TestMappingFidelityWithFeaturesBlendsLosslessAndSupported(t *testing.T) {
	reg := registry.NewMappingRegistry(nil)
	reg.Add(registry.MappingRule{
		SourceDialect: registry.DialectOpenAI, TargetDialect: registry.DialectClaude,
		Feature: "system_prompt", Fidelity: registry.Lossless,
	})
	reg.Add(registry.MappingRule{
		SourceDialect: registry.DialectOpenAI, TargetDialect: registry.DialectClaude,
		Feature: "thinking", Fidelity: registry.FidelityUnsupported("no native thinking block"),
	})
	m := NewMatrix(reg)
	m.SetSourceDialect(registry.DialectOpenAI)
	m.SetMappingFeatures([]registry.Feature{"system_prompt", "thinking"})
	m.RegisterBackend(BackendEntry{ID: "claude", Manifest: manifestAllNative(), EngineDialect: registry.DialectClaude, Priority: 1})
	result, err := m.Project(basicWorkOrder())
	require.NoError(t, err)
	require.InDelta(t, 0.5, result.FidelityScore.MappingFidelity, 0.0001)
}

func TestSourceDialectExplicitOverridesVendorConfig(t *testing.T) {
	reg := registry.NewMappingRegistry(nil)
	m := NewMatrix(reg)
	m.SetSourceDialect(registry.DialectClaude)
	wo := basicWorkOrder()
	wo.Config.Vendor["abp"] = map[string]any{"source_dialect": "openai"}
	m.RegisterBackend(BackendEntry{ID: "claude", Manifest: manifestAllNative(), EngineDialect: registry.DialectClaude, Priority: 1})
	result, err := m.Project(wo)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.FidelityScore.MappingFidelity)
}

func TestVendorConfigSourceDialectUsedWhenNoExplicitOverride(t *testing.T) {
	reg := registry.NewMappingRegistry(nil)
	m := NewMatrix(reg)
	wo := basicWorkOrder()
	wo.Config.Vendor["abp"] = map[string]any{"source_dialect": "claude"}
	m.RegisterBackend(BackendEntry{ID: "claude", Manifest: manifestAllNative(), EngineDialect: registry.DialectClaude, Priority: 1})
	result, err := m.Project(wo)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.FidelityScore.MappingFidelity)
}

func TestPassthroughBonusSelectsSameDialectBackend(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	m.SetSourceDialect(registry.DialectClaude)
	m.RegisterBackend(BackendEntry{ID: "claude", Manifest: manifestAllNative(), EngineDialect: registry.DialectClaude, Priority: 10})
	m.RegisterBackend(BackendEntry{ID: "openai", Manifest: manifestAllNative(), EngineDialect: registry.DialectOpenAI, Priority: 100})

	wo := basicWorkOrder()
	wo.Config.Vendor["abp"] = map[string]any{"mode": "passthrough"}

	result, err := m.Project(wo)
	require.NoError(t, err)
	require.Equal(t, "claude", result.SelectedBackend)
}

func TestRegisteringSameIDTwiceKeepsLatestOnly(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	m.RegisterBackend(BackendEntry{ID: "claude", Manifest: manifestAllNative(), EngineDialect: registry.DialectClaude, Priority: 1})
	m.RegisterBackend(BackendEntry{ID: "claude", Manifest: manifestAllNative(), EngineDialect: registry.DialectClaude, Priority: 99})
	result, err := m.Project(basicWorkOrder())
	require.NoError(t, err)
	require.Equal(t, 1.0, result.FidelityScore.Priority)
	require.Empty(t, result.FallbackChain)
}

func TestDeterministicSelectionAcrossRepeatedRuns(t *testing.T) {
	m := NewMatrix(registry.NewMappingRegistry(nil))
	m.RegisterBackend(BackendEntry{ID: "openai", Manifest: manifestAllNative(), EngineDialect: registry.DialectOpenAI, Priority: 60})
	m.RegisterBackend(BackendEntry{ID: "claude", Manifest: manifestAllNative(), EngineDialect: registry.DialectClaude, Priority: 50})
	wo := basicWorkOrder()
	first, err := m.Project(wo)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := m.Project(wo)
		require.NoError(t, err)
		require.Equal(t, first.SelectedBackend, again.SelectedBackend)
	}
}
