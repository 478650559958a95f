package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func buildCapabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Dump the mock backend set's capability manifests as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapabilities(cmd)
		},
	}
}

func runCapabilities(cmd *cobra.Command) error {
	dispatcher := defaultDispatcher()
	manifests := dispatcher.BackendManifests()

	doc := make(map[string]map[string]string, len(manifests))
	for id, manifest := range manifests {
		levels := make(map[string]string, len(manifest))
		for cap, level := range manifest {
			levels[string(cap)] = level.String()
		}
		doc[id] = levels
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer enc.Close()
	if err := enc.Encode(doc); err != nil {
		exitCode = 3
		return err
	}
	exitCode = 0
	return nil
}
