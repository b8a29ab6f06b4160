// Package fix applies the fixes carried by diagnostics to source files.
// It decides which fixes are eligible, resolves conflicts between them and
// optionally re-lints the result to pick up fixes that conflicted.
package fix

import (
	"github.com/wharflab/typelint/internal/config"
	"github.com/wharflab/typelint/internal/rules"
)

// Re-export FixSafety from rules package for convenience.
// This allows fix package users to use fix.FixSafe instead of rules.FixSafe.
type FixSafety = rules.FixSafety

const (
	// FixSafe means the fix is always correct and won't change behavior.
	FixSafe = rules.FixSafe

	// FixUnsafe means the fix might change behavior and needs --fix-unsafe.
	FixUnsafe = rules.FixUnsafe
)

// Re-export FixMode from config for convenience.
type FixMode = config.FixMode

const (
	// FixModeNever disables fixes even with --fix.
	FixModeNever = config.FixModeNever

	// FixModeExplicit requires --fix-rule to apply.
	FixModeExplicit = config.FixModeExplicit

	// FixModeAlways applies with --fix when safety threshold is met (default).
	FixModeAlways = config.FixModeAlways

	// FixModeUnsafeOnly requires --fix-unsafe to apply.
	FixModeUnsafeOnly = config.FixModeUnsafeOnly
)

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	// RuleCode identifies which rule this fix is for.
	RuleCode string

	// Description explains what the fix did.
	Description string

	// Location is where the fix was applied. Fixes applied on a later pass
	// are located in the content produced by the previous pass.
	Location rules.Location

	// Pass is the 1-based fix pass that applied the fix.
	Pass int

	// Edits are the edits of this fix, in the coordinates of the content
	// the pass started from.
	Edits []rules.TextEdit
}

// SkipReason explains why a fix was skipped.
type SkipReason int

const (
	// SkipConflict means the fix overlaps with another fix.
	SkipConflict SkipReason = iota

	// SkipSafety means the fix is below the safety threshold.
	SkipSafety

	// SkipRuleFilter means the rule is not in the --fix-rule list.
	SkipRuleFilter

	// SkipVerify means the fixed content no longer parsed cleanly and the
	// pass was rolled back.
	SkipVerify

	// SkipNoEdits means the fix has no edits (invalid fix).
	SkipNoEdits

	// SkipFixMode means the rule's fix mode config disallows fixing.
	SkipFixMode

	// SkipInvalidEdit means an edit lies outside the file or two edits of
	// the same fix overlap.
	SkipInvalidEdit
)

// String returns a human-readable description of the skip reason.
func (r SkipReason) String() string {
	switch r {
	case SkipConflict:
		return "conflicts with another fix"
	case SkipSafety:
		return "below safety threshold"
	case SkipRuleFilter:
		return "rule not in fix-rule list"
	case SkipVerify:
		return "fixed source failed verification"
	case SkipNoEdits:
		return "no edits in fix"
	case SkipFixMode:
		return "disabled by fix mode config"
	case SkipInvalidEdit:
		return "edit out of range"
	default:
		return "unknown reason"
	}
}

// SkippedFix records a fix that couldn't be applied.
type SkippedFix struct {
	// RuleCode identifies which rule this fix is for.
	RuleCode string

	// Reason explains why the fix was skipped.
	Reason SkipReason

	// Location is where the fix would have been applied.
	Location rules.Location

	// Error contains the error message if Reason is SkipVerify.
	Error string
}

// FileChange describes changes to a single file.
type FileChange struct {
	// Path is the file path.
	Path string

	// FixesApplied lists the fixes that were applied.
	FixesApplied []AppliedFix

	// FixesSkipped lists fixes that couldn't be applied on the last pass.
	FixesSkipped []SkippedFix

	// Passes is the number of fix passes that ran.
	Passes int

	// OriginalContent is the file content before fixes.
	OriginalContent []byte

	// ModifiedContent is the file content after fixes.
	ModifiedContent []byte
}

// HasChanges returns true if any fixes were applied to this file.
func (fc *FileChange) HasChanges() bool {
	return len(fc.FixesApplied) > 0
}
