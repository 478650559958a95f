package workorder

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal status of a run.
type Outcome string

const (
	OutcomeComplete Outcome = "complete"
	OutcomePartial  Outcome = "partial"
	OutcomeFailed   Outcome = "failed"
)

type (
	// RunMetadata identifies a run and its timing.
	RunMetadata struct {
		RunID            uuid.UUID `json:"run_id"`
		WorkOrderID      uuid.UUID `json:"work_order_id"`
		ContractVersion  string    `json:"contract_version"`
		StartedAt        time.Time `json:"started_at"`
		FinishedAt       time.Time `json:"finished_at"`
		DurationMs       uint64    `json:"duration_ms"`
	}

	// UsageNormalized is the backend's token/cost accounting, normalized
	// across vendor-specific usage payloads. Every field is optional:
	// a backend that cannot report a figure omits it rather than
	// reporting zero.
	UsageNormalized struct {
		InputTokens      *uint64  `json:"input_tokens,omitempty"`
		OutputTokens     *uint64  `json:"output_tokens,omitempty"`
		CacheReadTokens  *uint64  `json:"cache_read_tokens,omitempty"`
		CacheWriteTokens *uint64  `json:"cache_write_tokens,omitempty"`
		RequestUnits     *uint64  `json:"request_units,omitempty"`
		EstimatedCostUSD *float64 `json:"estimated_cost_usd,omitempty"`
	}

	// ArtifactRef points at a file the run produced (a patch, a log).
	ArtifactRef struct {
		Kind string `json:"kind"`
		Path string `json:"path"`
	}

	// VerificationReport records any automated checks the backend ran
	// against its own output before sealing the receipt.
	VerificationReport struct {
		GitDiff     *string `json:"git_diff,omitempty"`
		GitStatus   *string `json:"git_status,omitempty"`
		HarnessOK   bool    `json:"harness_ok"`
		CoveragePct *float64 `json:"coverage_pct,omitempty"`
	}
)

// Receipt is the sealed output contract of a run: what happened, what it
// cost, and a content hash that lets callers detect tampering.
type Receipt struct {
	Meta           RunMetadata        `json:"meta"`
	Backend        BackendIdentity    `json:"backend"`
	Capabilities   CapabilityManifest `json:"capabilities"`
	Mode           ExecutionMode      `json:"mode"`
	UsageRaw       any                `json:"usage_raw"`
	Usage          UsageNormalized    `json:"usage"`
	Trace          []AgentEvent       `json:"trace"`
	Artifacts      []ArtifactRef      `json:"artifacts"`
	Verification   VerificationReport `json:"verification"`
	Outcome        Outcome            `json:"outcome"`
	ReceiptSHA256  *string            `json:"receipt_sha256"`
}

// UnmarshalJSON decodes a Receipt, defaulting an absent or empty "mode"
// to ExecutionModeMapped.
func (r *Receipt) UnmarshalJSON(data []byte) error {
	type alias Receipt
	var shadow alias
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	if shadow.Mode == "" {
		shadow.Mode = ExecutionModeMapped
	}
	*r = Receipt(shadow)
	return nil
}

// ReceiptChain is a sequence of receipts whose run IDs must be unique and
// whose embedded hashes, if present, must recompute correctly.
type ReceiptChain []Receipt

// Verify checks uniqueness of run_id across the chain and recomputes each
// present receipt_sha256. Returns the first violation found, or nil.
func (c ReceiptChain) Verify() error {
	seen := make(map[uuid.UUID]bool, len(c))
	for _, r := range c {
		if seen[r.Meta.RunID] {
			return &DuplicateRunIDError{RunID: r.Meta.RunID}
		}
		seen[r.Meta.RunID] = true
		if r.ReceiptSHA256 == nil {
			continue
		}
		want := *r.ReceiptSHA256
		got, err := ReceiptHash(r)
		if err != nil {
			return err
		}
		if got != want {
			return &HashMismatchError{RunID: r.Meta.RunID, Want: want, Got: got}
		}
	}
	return nil
}

// DuplicateRunIDError reports that two receipts in a chain share a run ID.
type DuplicateRunIDError struct {
	RunID uuid.UUID
}

func (e *DuplicateRunIDError) Error() string {
	return "workorder: duplicate run_id in receipt chain: " + e.RunID.String()
}

// HashMismatchError reports that a receipt's stored hash does not match
// its recomputed hash.
type HashMismatchError struct {
	RunID    uuid.UUID
	Want, Got string
}

func (e *HashMismatchError) Error() string {
	return "workorder: receipt hash mismatch for run " + e.RunID.String() + ": want " + e.Want + " got " + e.Got
}
