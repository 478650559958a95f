package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

func TestDefaultPolicyAllowsEverything(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{})
	require.NoError(t, err)
	for _, name := range []string{"tool with spaces", "ns.tool", "org/tool", "UPPER"} {
		require.True(t, e.CanUseTool(name).Allowed)
	}
	for _, p := range []string{"file name.txt", "dir with spaces/f.rs", "@scope/pkg"} {
		require.True(t, e.CanReadPath(p).Allowed)
		require.True(t, e.CanWritePath(p).Allowed)
	}
}

func TestToolAllowlistGlobPatterns(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{AllowedTools: []string{"File*", "Net*"}})
	require.NoError(t, err)
	require.True(t, e.CanUseTool("FileRead").Allowed)
	require.True(t, e.CanUseTool("NetGet").Allowed)
	require.False(t, e.CanUseTool("Bash").Allowed)
}

func TestToolAllowlistCaseSensitive(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{AllowedTools: []string{"Read"}})
	require.NoError(t, err)
	require.True(t, e.CanUseTool("Read").Allowed)
	require.False(t, e.CanUseTool("read").Allowed)
}

func TestToolDenylistBraceExpansion(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{DisallowedTools: []string{"{Bash,Shell,Exec}"}})
	require.NoError(t, err)
	require.False(t, e.CanUseTool("Bash").Allowed)
	require.False(t, e.CanUseTool("Shell").Allowed)
	require.True(t, e.CanUseTool("Read").Allowed)
}

func TestReadDenyHiddenFilesRecursively(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{DenyRead: []string{"**/.*"}})
	require.NoError(t, err)
	require.False(t, e.CanReadPath(".gitignore").Allowed)
	require.False(t, e.CanReadPath("sub/.hidden").Allowed)
	require.True(t, e.CanReadPath("src/visible.rs").Allowed)
}

func TestReadDenySpecificDirectoryNotSibling(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{DenyRead: []string{"private/**"}})
	require.NoError(t, err)
	require.False(t, e.CanReadPath("private/doc.txt").Allowed)
	require.True(t, e.CanReadPath("public/doc.txt").Allowed)
	require.True(t, e.CanReadPath("private_other/doc.txt").Allowed)
}

func TestWriteDenyBuildArtifacts(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{
		DenyWrite: []string{"**/target/**", "**/dist/**", "**/*.o"},
	})
	require.NoError(t, err)
	require.False(t, e.CanWritePath("target/debug/app").Allowed)
	require.False(t, e.CanWritePath("dist/bundle.js").Allowed)
	require.False(t, e.CanWritePath("src/module.o").Allowed)
	require.True(t, e.CanWritePath("src/main.rs").Allowed)
}

func TestWriteDenyDoesNotBleedIntoRead(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{DenyWrite: []string{"protected/**"}})
	require.NoError(t, err)
	require.False(t, e.CanWritePath("protected/file.txt").Allowed)
	require.True(t, e.CanReadPath("protected/file.txt").Allowed)
}

func TestDenyOverridesAllowIdenticalPatterns(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{
		AllowedTools:    []string{"*"},
		DisallowedTools: []string{"*"},
	})
	require.NoError(t, err)
	require.False(t, e.CanUseTool("Read").Allowed)
}

func TestDenyOverridesAllowGlobOverlap(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{
		AllowedTools:    []string{"File*"},
		DisallowedTools: []string{"*Write*"},
	})
	require.NoError(t, err)
	require.True(t, e.CanUseTool("FileRead").Allowed)
	require.False(t, e.CanUseTool("FileWrite").Allowed)
}

func TestGlobQuestionMarkSingleChar(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{DenyWrite: []string{"data_?.csv"}})
	require.NoError(t, err)
	require.False(t, e.CanWritePath("data_A.csv").Allowed)
	require.True(t, e.CanWritePath("data_AB.csv").Allowed)
}

func TestGlobBraceExpansionForExtensions(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{DenyRead: []string{"**/*.{pem,key,p12,jks}"}})
	require.NoError(t, err)
	require.False(t, e.CanReadPath("certs/server.pem").Allowed)
	require.False(t, e.CanReadPath("keys/id.key").Allowed)
	require.True(t, e.CanReadPath("src/main.rs").Allowed)
}

func TestGlobDoubleStarMatchesArbitraryDepth(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{DenyWrite: []string{"**/backup/**"}})
	require.NoError(t, err)
	require.False(t, e.CanWritePath("backup/file.txt").Allowed)
	require.False(t, e.CanWritePath("a/backup/file.txt").Allowed)
	require.False(t, e.CanWritePath("a/b/c/backup/d/e/f.txt").Allowed)
	require.True(t, e.CanWritePath("backups/file.txt").Allowed)
}

func TestGlobCharacterClass(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{DisallowedTools: []string{"[ABC]Tool"}})
	require.NoError(t, err)
	require.False(t, e.CanUseTool("ATool").Allowed)
	require.True(t, e.CanUseTool("DTool").Allowed)
}

func TestDecisionAllowHasNoReason(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{})
	require.NoError(t, err)
	require.Nil(t, e.CanUseTool("Any").Reason)
}

func TestDecisionDenyReasonsAreDescriptive(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{
		DisallowedTools: []string{"Bash"},
		DenyRead:        []string{"secret/**"},
		DenyWrite:       []string{"locked/**"},
	})
	require.NoError(t, err)
	require.Contains(t, *e.CanUseTool("Bash").Reason, "Bash")
	require.Contains(t, *e.CanReadPath("secret/key").Reason, "secret/key")
	require.Contains(t, *e.CanWritePath("locked/data").Reason, "locked/data")
}

func TestDecisionMissingFromAllowlistReason(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{AllowedTools: []string{"Read"}})
	require.NoError(t, err)
	require.Contains(t, *e.CanUseTool("Unknown").Reason, "not in allowlist")
}

func TestInvalidGlobInAllowedToolsErrors(t *testing.T) {
	_, err := NewEngine(workorder.PolicyProfile{AllowedTools: []string{"[unclosed"}})
	require.Error(t, err)
}

func TestInvalidGlobInDenyReadErrors(t *testing.T) {
	_, err := NewEngine(workorder.PolicyProfile{DenyRead: []string{"["}})
	require.Error(t, err)
}

func TestScenarioReadOnlyAgent(t *testing.T) {
	e, err := NewEngine(workorder.PolicyProfile{
		AllowedTools: []string{"Read", "Grep", "ListDir", "Search"},
		DenyWrite:    []string{"**"},
		DenyRead:     []string{"**/.env", "**/.env.*", "**/secrets/**", "**/*.key"},
	})
	require.NoError(t, err)
	require.True(t, e.CanUseTool("Read").Allowed)
	require.False(t, e.CanUseTool("Write").Allowed)
	require.False(t, e.CanWritePath("any/file.txt").Allowed)
	require.True(t, e.CanReadPath("src/main.rs").Allowed)
	require.False(t, e.CanReadPath(".env").Allowed)
	require.False(t, e.CanReadPath("secrets/api_key.txt").Allowed)
}
