package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const example = "interface Example {\n (): string;\n}\n"

func TestCheckText(t *testing.T) {
	t.Parallel()
	dir := project(t, map[string]string{"example.ts": example})

	res := runTypelint(t, dir, "check", "example.ts")
	assert.Equal(t, 1, res.exit, res.stderr)
	assert.Contains(t, res.stdout, "example.ts:2:2 lint/style/useShorthandFunctionType FIXABLE ━")
	assert.Contains(t, res.stdout, "\n  ! Use a function type instead of a call signature.\n")
	assert.Contains(t, res.stdout, "  > 2 │  (): string;\n      │  ^^^^^^^^^^^\n")
	assert.Contains(t, res.stdout, "  i Safe fix: Alias a function type instead of using an interface with a call signature.\n")
	assert.Contains(t, res.stdout, "      1 │ + type·Example·=·()·=>·string\n")
}

func TestCheckDirectory(t *testing.T) {
	t.Parallel()
	dir := project(t, map[string]string{
		"src/a.ts":                  "type A = { (): void };\n",
		"src/b.mts":                 "let b = 1;\n",
		"src/c.tsx":                 "type C = { (): void };\n",
		"node_modules/dep/index.ts": "type D = { (): void };\n",
		"src/generated/skip.ts":     "type S = { (): void };\n",
		".typelint.toml":            "[files]\nexclude = [\"**/node_modules/**\", \"**/generated/**\"]\n",
	})

	res := runTypelint(t, dir, "check", "--format", "json", ".")
	assert.Equal(t, 1, res.exit, res.stderr)

	var report struct {
		Files []struct {
			File string `json:"file"`
		} `json:"files"`
		Summary struct {
			Total int `json:"total"`
		} `json:"summary"`
		FilesScanned int `json:"files_scanned"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report), res.stdout)
	assert.Equal(t, 2, report.Summary.Total)
	assert.Equal(t, 3, report.FilesScanned)
	files := make([]string, 0, len(report.Files))
	for _, f := range report.Files {
		files = append(files, f.File)
	}
	assert.ElementsMatch(t, []string{"src/a.ts", "src/c.tsx"}, files)
}

func TestCheckClean(t *testing.T) {
	t.Parallel()
	dir := project(t, map[string]string{
		"a.ts": "type A = () => void;\ninterface B { (): void; x: number }\n",
	})

	res := runTypelint(t, dir, "check", "a.ts")
	assert.Equal(t, 0, res.exit, res.stderr)
	assert.Empty(t, res.stdout)
}

func TestCheckSuppression(t *testing.T) {
	t.Parallel()
	dir := project(t, map[string]string{
		"a.ts": "// typelint-ignore useShorthandFunctionType: merged below\ninterface A {\n  (): void;\n}\n",
	})

	res := runTypelint(t, dir, "check", "a.ts")
	assert.Equal(t, 0, res.exit, res.stdout)

	res = runTypelint(t, dir, "check", "--no-inline-directives", "a.ts")
	assert.Equal(t, 1, res.exit)
}

func TestCheckUnusedSuppression(t *testing.T) {
	t.Parallel()
	dir := project(t, map[string]string{
		"a.ts": "// typelint-ignore style\nlet x = 1;\n",
	})

	res := runTypelint(t, dir, "check", "--warn-unused-directives", "--format", "github-actions", "a.ts")
	assert.Equal(t, 1, res.exit)
	assert.Contains(t, res.stdout, "::warning file=a.ts,line=1")
	assert.Contains(t, res.stdout, "suppressions/unused")
}

func TestCheckSeverityFromConfig(t *testing.T) {
	t.Parallel()
	dir := project(t, map[string]string{
		"a.ts":           "type A = { (): void };\n",
		".typelint.toml": "[output]\nfail-level = \"error\"\n\n[rules.style.useShorthandFunctionType]\nseverity = \"info\"\n",
	})

	res := runTypelint(t, dir, "check", "--format", "markdown", "a.ts")
	assert.Equal(t, 0, res.exit, res.stderr)
	assert.Contains(t, res.stdout, "**1 issue** in `a.ts`")

	res = runTypelint(t, dir, "check", "--fail-level", "info", "a.ts")
	assert.Equal(t, 1, res.exit)
}

func TestCheckSARIF(t *testing.T) {
	t.Parallel()
	dir := project(t, map[string]string{"example.ts": example})

	res := runTypelint(t, dir, "check", "--format", "sarif", "example.ts")
	assert.Equal(t, 1, res.exit, res.stderr)

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Results []struct {
				RuleID string `json:"ruleId"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &log), res.stdout)
	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	require.Len(t, log.Runs[0].Results, 1)
	assert.Equal(t, "lint/style/useShorthandFunctionType", log.Runs[0].Results[0].RuleID)
}

func TestCheckErrors(t *testing.T) {
	t.Parallel()
	dir := project(t, map[string]string{"example.ts": example})

	assert.Equal(t, 2, runTypelint(t, dir, "check", "--format", "xml", "example.ts").exit)
	assert.Equal(t, 2, runTypelint(t, dir, "check", "missing.ts").exit)

	bad := project(t, map[string]string{
		"a.ts":           example,
		".typelint.toml": "[rules.nonsense.rule]\nseverity = \"error\"\n",
	})
	assert.Equal(t, 2, runTypelint(t, bad, "check", "a.ts").exit)
}

func TestRulesList(t *testing.T) {
	t.Parallel()
	res := runTypelint(t, t.TempDir(), "rules", "--json")
	require.Equal(t, 0, res.exit, res.stderr)

	var infos []struct {
		Code string `json:"code"`
		Fix  string `json:"fix"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &infos))
	require.NotEmpty(t, infos)
	assert.Equal(t, "lint/style/useShorthandFunctionType", infos[0].Code)
	assert.Equal(t, "safe", infos[0].Fix)
}
