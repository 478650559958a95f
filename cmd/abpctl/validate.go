package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EffortlessMetrics/agent-backplane-sub000/wire"
)

func buildValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a JSONL envelope transcript (read from stdin) against the wire sequencing rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd)
		},
	}
}

func runValidate(cmd *cobra.Command) error {
	codec := wire.JSONLCodec{}
	validator := wire.NewSequenceValidator()
	violations := 0

	err := codec.DecodeStream(cmd.InOrStdin(), func(env wire.Envelope) error {
		errs, warns := validator.Next(env)
		for _, e := range errs {
			violations++
			fmt.Fprintln(cmd.OutOrStdout(), "error:", e.Error())
		}
		for _, w := range warns {
			fmt.Fprintln(cmd.OutOrStdout(), "warning:", w.String())
		}
		return nil
	})
	if err != nil {
		exitCode = 3
		return fmt.Errorf("abpctl: decode transcript: %w", err)
	}

	if violations > 0 {
		exitCode = 1
		return nil
	}
	exitCode = 0
	return nil
}
