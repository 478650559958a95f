package main

import (
	"github.com/EffortlessMetrics/agent-backplane-sub000/registry"
	"github.com/EffortlessMetrics/agent-backplane-sub000/runtime"
	"github.com/EffortlessMetrics/agent-backplane-sub000/telemetry"
	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

// allCapabilities lists every capability the mock backend set reports,
// in the same order as workorder's own enum declaration.
var allCapabilities = []workorder.Capability{
	workorder.CapabilityStreaming,
	workorder.CapabilityToolRead,
	workorder.CapabilityToolWrite,
	workorder.CapabilityToolEdit,
	workorder.CapabilityToolBash,
	workorder.CapabilityToolGlob,
	workorder.CapabilityToolGrep,
	workorder.CapabilityToolWebSearch,
	workorder.CapabilityToolWebFetch,
	workorder.CapabilityToolAskUser,
	workorder.CapabilityHooksPreToolUse,
	workorder.CapabilityHooksPostToolUse,
	workorder.CapabilitySessionResume,
	workorder.CapabilitySessionFork,
	workorder.CapabilityCheckpointing,
	workorder.CapabilityStructuredOutputJSONSchema,
	workorder.CapabilityMcpClient,
	workorder.CapabilityMcpServer,
}

// fullManifest reports every capability as natively supported — the
// mock backends have no real vendor limitations to model.
func fullManifest() workorder.CapabilityManifest {
	m := workorder.NewCapabilityManifest()
	for _, cap := range allCapabilities {
		m[cap] = workorder.SupportNative
	}
	return m
}

// defaultDispatcher returns a Dispatcher with one mock backend per
// dialect (so `abpctl run` without --backend can still be auto-selected
// by the projection matrix on mapping fidelity) plus a plain "mock"
// backend (reporting the OpenAI dialect) as a stable default.
func defaultDispatcher() *runtime.Dispatcher {
	d := runtime.NewDispatcher(telemetry.NewClueLogger())
	d.RegisterBackend(runtime.NewMockBackend("mock", registry.DialectOpenAI, fullManifest()))
	for _, dialect := range registry.AllDialects {
		d.RegisterBackend(runtime.NewMockBackend("mock-"+string(dialect), dialect, fullManifest()))
	}
	return d
}
