package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/EffortlessMetrics/agent-backplane-sub000/registry"
)

type mappingRuleDoc struct {
	Source   string `yaml:"source"`
	Target   string `yaml:"target"`
	Feature  string `yaml:"feature"`
	Fidelity string `yaml:"fidelity"`
	Note     string `yaml:"note,omitempty"`
}

func buildMappingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mapping",
		Short: "Dump the default cross-dialect mapping registry as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMapping(cmd)
		},
	}
}

func runMapping(cmd *cobra.Command) error {
	reg := registry.NewDefaultRegistry()
	rules := reg.Rules()

	docs := make([]mappingRuleDoc, 0, len(rules))
	for _, r := range rules {
		doc := mappingRuleDoc{
			Source:  string(r.SourceDialect),
			Target:  string(r.TargetDialect),
			Feature: string(r.Feature),
		}
		switch {
		case r.Fidelity.IsLossless():
			doc.Fidelity = "lossless"
		case r.Fidelity.IsSupported():
			doc.Fidelity = "lossy_labeled"
			doc.Note = r.Fidelity.Warning()
		default:
			doc.Fidelity = "unsupported"
			doc.Note = r.Fidelity.Reason()
		}
		docs = append(docs, doc)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer enc.Close()
	if err := enc.Encode(docs); err != nil {
		exitCode = 3
		return err
	}
	exitCode = 0
	return nil
}
