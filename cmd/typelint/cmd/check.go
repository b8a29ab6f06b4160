package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/typelint/internal/config"
	"github.com/wharflab/typelint/internal/discovery"
	"github.com/wharflab/typelint/internal/fix"
	"github.com/wharflab/typelint/internal/linter"
	"github.com/wharflab/typelint/internal/patch"
	"github.com/wharflab/typelint/internal/reporter"
	"github.com/wharflab/typelint/internal/rules"
	"github.com/wharflab/typelint/internal/version"
)

// Exit codes
const (
	ExitSuccess     = 0 // No diagnostics (or below fail-level threshold)
	ExitViolations  = 1 // Diagnostics found at or above fail-level
	ExitConfigError = 2 // Usage, config or I/O error
	ExitRenderError = 3 // A diagnostic could not be rendered against its source
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check TypeScript files for issues",
		ArgsUsage: "[PATH...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default: auto-discover)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, sarif, github-actions, markdown",
				Sources: cli.EnvVars("TYPELINT_FORMAT", "TYPELINT_OUTPUT_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path: stdout, stderr, or file path",
				Sources: cli.EnvVars("TYPELINT_OUTPUT_PATH"),
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output",
				Sources: cli.EnvVars("NO_COLOR"),
			},
			&cli.BoolFlag{
				Name:  "hide-source",
				Usage: "Hide code frames and fix diffs",
			},
			&cli.StringFlag{
				Name:    "fail-level",
				Usage:   "Minimum severity to cause non-zero exit: error, warning, info, none",
				Sources: cli.EnvVars("TYPELINT_OUTPUT_FAIL_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "no-inline-directives",
				Usage:   "Disable processing of typelint-ignore comments",
				Sources: cli.EnvVars("TYPELINT_NO_INLINE_DIRECTIVES"),
			},
			&cli.BoolFlag{
				Name:  "warn-unused-directives",
				Usage: "Warn about typelint-ignore comments that suppress nothing",
			},
			&cli.BoolFlag{
				Name:  "require-reason",
				Usage: "Warn about typelint-ignore comments without a reason",
			},
			&cli.StringSliceFlag{
				Name:    "exclude",
				Usage:   "Glob pattern to exclude files (can be repeated)",
				Sources: cli.EnvVars("TYPELINT_EXCLUDE"),
			},
			&cli.StringSliceFlag{
				Name:  "select",
				Usage: "Enable specific rules (pattern: rule-code, group/*, *)",
			},
			&cli.StringSliceFlag{
				Name:  "ignore",
				Usage: "Disable specific rules (pattern: rule-code, group/*, *)",
			},
			&cli.BoolFlag{
				Name:    "fix",
				Usage:   "Apply all safe fixes automatically",
				Sources: cli.EnvVars("TYPELINT_FIX"),
			},
			&cli.BoolFlag{
				Name:  "fix-unsafe",
				Usage: "Also apply unsafe fixes (requires --fix)",
			},
			&cli.StringSliceFlag{
				Name:  "fix-rule",
				Usage: "Only fix specific rules (can be repeated)",
			},
			&cli.BoolFlag{
				Name:  "diff",
				Usage: "Print fixes as a git-style patch instead of writing files (requires --fix)",
			},
			&cli.BoolFlag{
				Name:  "verify-fixes",
				Usage: "Re-parse fixed files with the tree-sitter TypeScript grammar",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Number of files linted in parallel",
				Value: 4,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output to stderr",
			},
		},
		Action: runCheck,
	}
}

// runCheck is the action handler for the check command.
func runCheck(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	}

	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		inputs = []string{"."}
	}

	baseCfg, err := loadConfigForFile(cmd, inputs[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	discovered, err := discovery.Discover(inputs, discovery.Options{
		Patterns:        baseCfg.Files.Include,
		ExcludePatterns: append(baseCfg.Files.Exclude, cmd.StringSlice("exclude")...),
		MaxFileSize:     baseCfg.Files.MaxFileSize,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to discover files: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	if len(discovered) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no TypeScript files found in %s\n", strings.Join(inputs, ", "))
		return cli.Exit("", ExitConfigError)
	}

	ch := linter.NewLogChannel(nil)
	lintInputs := make([]linter.Input, 0, len(discovered))
	for _, df := range discovered {
		cfg, err := loadConfigForFile(cmd, df.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load config for %s: %v\n", df.Path, err)
			return cli.Exit("", ExitConfigError)
		}
		lintInputs = append(lintInputs, linter.Input{
			FilePath: displayPath(df.Path),
			Config:   cfg,
			Channel:  ch,
		})
	}

	results, err := linter.LintFiles(ctx, lintInputs, cmd.Int("concurrency"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	diags := linter.Process(linter.CLIProcessors(), baseCfg, results)
	sources := make(map[string][]byte, len(results))
	for _, r := range results {
		sources[filepath.ToSlash(r.FilePath)] = r.Source
	}

	if cmd.Bool("fix-unsafe") && !cmd.Bool("fix") {
		fmt.Fprintf(os.Stderr, "Warning: --fix-unsafe has no effect without --fix\n")
	}
	if cmd.Bool("diff") && !cmd.Bool("fix") {
		fmt.Fprintf(os.Stderr, "Warning: --diff has no effect without --fix\n")
	}
	if cmd.Bool("fix") {
		fixResult, err := applyFixes(ctx, cmd, baseCfg, results, diags, ch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to apply fixes: %v\n", err)
			return cli.Exit("", ExitConfigError)
		}
		results, err = relintFixed(ctx, results, fixResult)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return cli.Exit("", ExitConfigError)
		}
		diags = linter.Process(linter.CLIProcessors(), baseCfg, results)

		if cmd.Bool("diff") {
			if err := patch.Write(os.Stdout, fixResult.Changes); err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to write patch: %v\n", err)
				return cli.Exit("", ExitConfigError)
			}
			return exitFor(diags, getOutputConfig(cmd, baseCfg).failLevel)
		}
		for _, r := range results {
			sources[filepath.ToSlash(r.FilePath)] = r.Source
		}
	}

	return writeReport(cmd, baseCfg, diags, sources, len(discovered))
}

// applyFixes runs the fixer over the processed diagnostics and writes the
// fixed files unless --diff is set.
func applyFixes(
	ctx context.Context, cmd *cli.Command, cfg *config.Config,
	results []*linter.Result, diags []rules.Diagnostic, ch linter.Channel,
) (*fix.Result, error) {
	fixer := linter.NewFixer(ctx, results, linter.FixOptions{
		Unsafe:      cmd.Bool("fix-unsafe"),
		Rules:       expandRuleCodes(cmd.StringSlice("fix-rule")),
		Verify:      cfg.Fix.Verify || cmd.Bool("verify-fixes"),
		Concurrency: cmd.Int("concurrency"),
		Channel:     ch,
	})

	sources := make(map[string][]byte, len(results))
	for _, r := range results {
		sources[r.FilePath] = r.Source
	}
	fixResult, err := fixer.Apply(ctx, diags, sources)
	if err != nil {
		return nil, err
	}

	if !cmd.Bool("diff") {
		for _, fc := range fixResult.Changes {
			if !fc.HasChanges() {
				continue
			}
			if err := writeFile(fc.Path, fc.ModifiedContent); err != nil {
				return nil, err
			}
		}
	}

	if n := fixResult.TotalApplied(); n > 0 {
		fmt.Fprintf(os.Stderr, "Fixed %d issues in %d files\n", n, fixResult.FilesModified())
	}
	reportSkippedFixes(fixResult)
	return fixResult, nil
}

// writeFile replaces path's content, keeping its permissions.
func writeFile(path string, content []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// reportSkippedFixes explains fixes that were rejected after being
// attempted. Fixes held back by safety or rule filters are expected and
// only logged.
func reportSkippedFixes(result *fix.Result) {
	for _, fc := range result.Changes {
		for _, s := range fc.FixesSkipped {
			entry := logrus.WithFields(logrus.Fields{
				"file":   fc.Path,
				"line":   s.Location.Start.Line,
				"rule":   s.RuleCode,
				"reason": s.Reason.String(),
			})
			switch s.Reason {
			case fix.SkipVerify:
				fmt.Fprintf(os.Stderr, "note: skipped fix %s (%s:%d): %s\n",
					s.RuleCode, fc.Path, s.Location.Start.Line, s.Error)
			default:
				entry.Debug("fix skipped")
			}
		}
	}
}

// relintFixed lints the fixed content of every changed file again, so the
// report describes the files as they are after fixing.
func relintFixed(ctx context.Context, results []*linter.Result, fixResult *fix.Result) ([]*linter.Result, error) {
	changed := make(map[string]*fix.FileChange)
	for _, fc := range fixResult.Changes {
		if fc.HasChanges() {
			changed[fc.Path] = fc
		}
	}

	out := make([]*linter.Result, len(results))
	for i, r := range results {
		fc, ok := changed[r.FilePath]
		if !ok {
			out[i] = r
			continue
		}
		res, err := linter.LintFile(ctx, linter.Input{
			FilePath: r.FilePath,
			Content:  fc.ModifiedContent,
			Config:   r.Config,
		})
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

// writeReport formats and writes the diagnostic report.
func writeReport(
	cmd *cli.Command, cfg *config.Config, diags []rules.Diagnostic,
	sources map[string][]byte, filesScanned int,
) error {
	outCfg := getOutputConfig(cmd, cfg)

	formatType, err := reporter.ParseFormat(outCfg.format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	writer, closeWriter, err := reporter.GetWriter(outCfg.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	defer func() {
		if err := closeWriter(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output: %v\n", err)
		}
	}()

	opts := reporter.Options{
		Format:      formatType,
		Writer:      writer,
		ShowSource:  outCfg.showSource,
		TabWidth:    outCfg.tabWidth,
		TabWidthFor: linter.NewTabWidths(outCfg.tabWidth).For,
		ToolName:    "typelint",
		ToolVersion: version.RawVersion(),
		ToolURI:     "https://github.com/wharflab/typelint",
	}
	if cmd.Bool("no-color") {
		noColor := false
		opts.Color = &noColor
	}

	rep, err := reporter.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create reporter: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	metadata := reporter.ReportMetadata{
		FilesScanned: filesScanned,
		RulesEnabled: len(linter.EnabledRuleCodes(cfg)),
	}
	if err := rep.Report(diags, sources, metadata); err != nil {
		if errors.Is(err, reporter.ErrRenderInconsistency) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return cli.Exit("", ExitRenderError)
		}
		fmt.Fprintf(os.Stderr, "Error: failed to write output: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	return exitFor(diags, outCfg.failLevel)
}

func exitFor(diags []rules.Diagnostic, failLevel string) error {
	if code := determineExitCode(diags, failLevel); code != ExitSuccess {
		return cli.Exit("", code)
	}
	return nil
}

// loadConfigForFile loads configuration for a target file, applying CLI
// overrides on top of every other source.
func loadConfigForFile(cmd *cli.Command, targetPath string) (*config.Config, error) {
	overrides := make(map[string]any)

	if cmd.IsSet("no-inline-directives") {
		overrides["inline-directives.enabled"] = !cmd.Bool("no-inline-directives")
	}
	if cmd.IsSet("warn-unused-directives") {
		overrides["inline-directives.warn-unused"] = cmd.Bool("warn-unused-directives")
	}
	if cmd.IsSet("require-reason") {
		overrides["inline-directives.require-reason"] = cmd.Bool("require-reason")
	}
	if sel := cmd.StringSlice("select"); len(sel) > 0 {
		overrides["rules.include"] = toAny(sel)
	}
	if ign := cmd.StringSlice("ignore"); len(ign) > 0 {
		overrides["rules.exclude"] = toAny(ign)
	}
	if cmd.IsSet("verify-fixes") {
		overrides["fix.verify"] = cmd.Bool("verify-fixes")
	}

	return config.LoadWithOverrides(targetPath, cmd.String("config"), overrides)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// outputConfig holds output configuration values.
type outputConfig struct {
	format     string
	path       string
	showSource bool
	failLevel  string
	tabWidth   int
}

// getOutputConfig returns output configuration from CLI flags and config.
func getOutputConfig(cmd *cli.Command, cfg *config.Config) outputConfig {
	oc := outputConfig{
		format:     "text",
		path:       "stdout",
		showSource: true,
		failLevel:  "info",
		tabWidth:   2,
	}

	if cfg != nil {
		if cfg.Output.Format != "" {
			oc.format = cfg.Output.Format
		}
		if cfg.Output.Path != "" {
			oc.path = cfg.Output.Path
		}
		oc.showSource = cfg.Output.ShowSource
		if cfg.Output.FailLevel != "" {
			oc.failLevel = cfg.Output.FailLevel
		}
		if cfg.Output.TabWidth > 0 {
			oc.tabWidth = cfg.Output.TabWidth
		}
	}

	// CLI flags take precedence
	if cmd.IsSet("format") {
		oc.format = cmd.String("format")
	}
	if cmd.IsSet("output") {
		oc.path = cmd.String("output")
	}
	if cmd.Bool("hide-source") {
		oc.showSource = false
	}
	if cmd.IsSet("fail-level") {
		oc.failLevel = cmd.String("fail-level")
	}

	return oc
}

// determineExitCode returns the exit code for diags under failLevel.
func determineExitCode(diags []rules.Diagnostic, failLevel string) int {
	if failLevel == "none" {
		return ExitSuccess
	}

	// Parse fail-level first to catch config errors even with no diagnostics
	threshold, err := rules.ParseSeverity(failLevel)
	if err != nil || threshold == rules.SeverityOff {
		fmt.Fprintf(os.Stderr, "Error: invalid fail-level %q\n", failLevel)
		return ExitConfigError
	}

	for _, d := range diags {
		if d.Severity.IsAtLeast(threshold) {
			return ExitViolations
		}
	}
	return ExitSuccess
}

// expandRuleCodes qualifies short rule references ("useShorthandFunctionType",
// "style/useShorthandFunctionType") with their full codes.
func expandRuleCodes(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if r := rules.Lookup(ref); r != nil {
			out = append(out, r.Metadata().Code)
			continue
		}
		out = append(out, ref)
	}
	return out
}

// displayPath shortens absolute paths under the working directory.
func displayPath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
