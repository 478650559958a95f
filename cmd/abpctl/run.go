package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/EffortlessMetrics/agent-backplane-sub000/projection"
	"github.com/EffortlessMetrics/agent-backplane-sub000/registry"
	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

func buildRunCmd() *cobra.Command {
	var backendID string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Dispatch a WorkOrder (read as JSON from stdin) and print its sealed Receipt as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, backendID)
		},
	}
	cmd.Flags().StringVar(&backendID, "backend", "",
		"backend ID to dispatch to (default: auto-selected by the projection matrix)")
	return cmd
}

func runRun(cmd *cobra.Command, backendID string) error {
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		exitCode = 3
		return fmt.Errorf("abpctl: read work order: %w", err)
	}

	var wo workorder.WorkOrder
	if err := json.Unmarshal(raw, &wo); err != nil {
		exitCode = 3
		return fmt.Errorf("abpctl: decode work order: %w", err)
	}

	dispatcher := defaultDispatcher()

	if backendID == "" {
		matrix := projection.NewMatrix(registry.NewDefaultRegistry())
		for _, entry := range dispatcher.ProjectionEntries() {
			matrix.RegisterBackend(entry)
		}
		result, err := matrix.Project(&wo)
		if err != nil {
			exitCode = 3
			return fmt.Errorf("abpctl: select backend: %w", err)
		}
		backendID = result.SelectedBackend
	}

	handle, err := dispatcher.Dispatch(context.Background(), backendID, wo)
	if err != nil {
		exitCode = 3
		return fmt.Errorf("abpctl: dispatch: %w", err)
	}

	for range handle.Events {
		// The receipt already carries the full trace; run only needs
		// the terminal value, but the channel must still be drained so
		// the backend goroutine's send on it never blocks.
	}

	receipt, ok := <-handle.Receipt
	if !ok {
		exitCode = 3
		return fmt.Errorf("abpctl: backend %q closed without producing a receipt", backendID)
	}

	out, err := json.Marshal(receipt)
	if err != nil {
		exitCode = 3
		return fmt.Errorf("abpctl: encode receipt: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	switch receipt.Outcome {
	case workorder.OutcomeComplete:
		exitCode = 0
	case workorder.OutcomePartial:
		exitCode = 1
	case workorder.OutcomeFailed:
		exitCode = 2
	default:
		exitCode = 3
	}
	return nil
}
