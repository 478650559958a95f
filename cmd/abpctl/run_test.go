package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

func execCmd(t *testing.T, stdin string, args ...string) (string, int) {
	t.Helper()
	exitCode = 3
	root := buildRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	var out bytes.Buffer
	root.SetOut(&out)
	err := root.Execute()
	require.NoError(t, err)
	return out.String(), exitCode
}

func TestRunCompletesAgainstDefaultMockBackend(t *testing.T) {
	wo := workorder.WorkOrder{ID: uuid.New(), Task: "say hi", Config: workorder.NewRuntimeConfig()}
	raw, err := json.Marshal(wo)
	require.NoError(t, err)

	out, code := execCmd(t, string(raw), "run", "--backend", "mock")
	require.Equal(t, 0, code)

	var receipt workorder.Receipt
	require.NoError(t, json.Unmarshal([]byte(out), &receipt))
	require.Equal(t, workorder.OutcomeComplete, receipt.Outcome)
	require.NotNil(t, receipt.ReceiptSHA256)
}

func TestRunAutoSelectsBackendViaProjectionMatrix(t *testing.T) {
	wo := workorder.WorkOrder{ID: uuid.New(), Task: "say hi", Config: workorder.NewRuntimeConfig()}
	raw, err := json.Marshal(wo)
	require.NoError(t, err)

	out, code := execCmd(t, string(raw), "run")
	require.Equal(t, 0, code)
	require.Contains(t, out, "\"outcome\":\"complete\"")
}

func TestRunUnknownBackendIsFatal(t *testing.T) {
	wo := workorder.WorkOrder{ID: uuid.New(), Task: "x", Config: workorder.NewRuntimeConfig()}
	raw, err := json.Marshal(wo)
	require.NoError(t, err)

	_, code := execCmdAllowError(t, string(raw), "run", "--backend", "nonexistent")
	require.Equal(t, 3, code)
}

func execCmdAllowError(t *testing.T, stdin string, args ...string) (string, int) {
	t.Helper()
	exitCode = 3
	root := buildRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	var out bytes.Buffer
	root.SetOut(&out)
	_ = root.Execute()
	return out.String(), exitCode
}

func TestCapabilitiesDumpsYAMLForEveryMockBackend(t *testing.T) {
	out, code := execCmd(t, "", "capabilities")
	require.Equal(t, 0, code)
	require.Contains(t, out, "mock:")
	require.Contains(t, out, "streaming: native")
}

func TestMappingDumpsRegisteredRules(t *testing.T) {
	out, code := execCmd(t, "", "mapping")
	require.Equal(t, 0, code)
	require.Contains(t, out, "source: openai")
	require.Contains(t, out, "fidelity: lossless")
}

func TestValidateReportsHelloNotFirst(t *testing.T) {
	transcript := `{"t":"run","id":"r1","work_order":{"id":"` + uuid.NewString() + `","task":"x","lane":"patch_first","workspace":{"root":"","mode":"pass_through","include":null,"exclude":null},"context":{"files":null,"snippets":null},"policy":{},"requirements":{"required":null},"config":{"vendor":{},"env":{}}}}` + "\n"
	out, code := execCmd(t, transcript, "validate")
	require.Equal(t, 1, code)
	require.Contains(t, out, "hello")
}
