package workorder

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ContractVersion is the wire contract version this build implements.
// It is the value every Hello envelope and Receipt.meta must carry.
const ContractVersion = "abp/v0.1"

// ExecutionLane selects the high-level strategy a backend uses to apply
// a work order's changes.
type ExecutionLane string

const (
	ExecutionLanePatchFirst      ExecutionLane = "patch_first"
	ExecutionLaneWorkspaceFirst  ExecutionLane = "workspace_first"
)

// WorkspaceMode controls how a backend is allowed to touch the workspace
// root: PassThrough writes directly, Staged applies changes to a staging
// area for review before they land.
type WorkspaceMode string

const (
	WorkspaceModePassThrough WorkspaceMode = "pass_through"
	WorkspaceModeStaged      WorkspaceMode = "staged"
)

type (
	// WorkspaceSpec describes the filesystem scope a run is allowed to
	// touch.
	WorkspaceSpec struct {
		Root    string        `json:"root"`
		Mode    WorkspaceMode `json:"mode"`
		Include []string      `json:"include"`
		Exclude []string      `json:"exclude"`
	}

	// ContextSnippet is a single named piece of caller-supplied context
	// (an error message, a log excerpt) attached to a work order.
	ContextSnippet struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}

	// ContextPacket bundles the files and ad hoc snippets a caller wants
	// the backend to see before starting the run.
	ContextPacket struct {
		Files    []string         `json:"files"`
		Snippets []ContextSnippet `json:"snippets"`
	}

	// PolicyProfile is the work order's declarative policy input, later
	// compiled by the policy engine (see the policy package) into glob
	// matchers and Decision functions.
	PolicyProfile struct {
		AllowedTools        []string `json:"allowed_tools"`
		DisallowedTools     []string `json:"disallowed_tools"`
		DenyRead            []string `json:"deny_read"`
		DenyWrite           []string `json:"deny_write"`
		AllowNetwork        []string `json:"allow_network"`
		DenyNetwork         []string `json:"deny_network"`
		RequireApprovalFor  []string `json:"require_approval_for"`
	}

	// RuntimeConfig carries model selection and vendor-specific knobs
	// that don't have a cross-dialect counterpart in the IR.
	RuntimeConfig struct {
		Model        *string        `json:"model,omitempty"`
		Vendor       map[string]any `json:"vendor"`
		Env          map[string]any `json:"env"`
		MaxBudgetUSD *float64       `json:"max_budget_usd,omitempty"`
		MaxTurns     *uint32        `json:"max_turns,omitempty"`
	}

	// WorkOrder is the immutable input contract dispatched to a backend:
	// what to do, where, under what policy, with what capability floor.
	WorkOrder struct {
		ID           uuid.UUID              `json:"id"`
		Task         string                 `json:"task"`
		Lane         ExecutionLane          `json:"lane"`
		Workspace    WorkspaceSpec          `json:"workspace"`
		Context      ContextPacket          `json:"context"`
		Policy       PolicyProfile          `json:"policy"`
		Requirements CapabilityRequirements `json:"requirements"`
		Config       RuntimeConfig          `json:"config"`
	}
)

// NewRuntimeConfig returns a RuntimeConfig with initialized, empty vendor
// and env maps, matching the bare-minimum wire fixture where only those
// two fields are required.
func NewRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{Vendor: map[string]any{}, Env: map[string]any{}}
}

// MarshalJSON re-encodes Vendor and Env with sorted keys for deterministic
// wire output and hash stability.
func (c RuntimeConfig) MarshalJSON() ([]byte, error) {
	type wire struct {
		Model        *string        `json:"model,omitempty"`
		Vendor       orderedAny     `json:"vendor"`
		Env          orderedAny     `json:"env"`
		MaxBudgetUSD *float64       `json:"max_budget_usd,omitempty"`
		MaxTurns     *uint32        `json:"max_turns,omitempty"`
	}
	return json.Marshal(wire{
		Model:        c.Model,
		Vendor:       orderedAny(c.Vendor),
		Env:          orderedAny(c.Env),
		MaxBudgetUSD: c.MaxBudgetUSD,
		MaxTurns:     c.MaxTurns,
	})
}
