package main

import "github.com/spf13/cobra"

func buildRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "abpctl",
		Short:         "Dispatch and inspect Agent Backplane work orders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		buildRunCmd(),
		buildCapabilitiesCmd(),
		buildMappingCmd(),
		buildValidateCmd(),
	)
	return cmd
}
