package directive

import (
	"regexp"
	"strings"

	"github.com/wharflab/typelint/internal/sourcemap"
)

// typelint-ignore[-all|-start|-end] RULES[: reason]
var directivePattern = regexp.MustCompile(`^typelint-ignore(-all|-start|-end)?(?:[ \t]+([^:]*?))?[ \t]*(?::[ \t]*(.*))?$`)

// RuleValidator is a function that checks if a rule reference is known.
type RuleValidator func(string) bool

// ExtentFunc returns the last 0-based line of the construct that starts on
// the given 0-based line. Next-line directives cover that whole construct.
type ExtentFunc func(line int) int

// Options configures Parse.
type Options struct {
	// Validator, when set, reports unknown rule references as parse errors.
	Validator RuleValidator

	// Extent, when set, widens next-line directives to the construct that
	// follows them.
	Extent ExtentFunc
}

// Parse extracts all inline directives from a SourceMap.
func Parse(sm *sourcemap.SourceMap, opts Options) *ParseResult {
	result := &ParseResult{}
	var open []*Directive

	for _, comment := range sm.Comments() {
		if !comment.IsDirective {
			continue
		}

		kind, rules, reason, perr := parseComment(comment)
		if perr != nil {
			result.Errors = append(result.Errors, *perr)
			continue
		}

		switch kind {
		case "-end":
			i := lastMatchingStart(open, rules)
			if i < 0 {
				result.Errors = append(result.Errors, ParseError{
					Line:    comment.Line,
					Message: "typelint-ignore-end without a matching typelint-ignore-start",
					RawText: comment.Text,
				})
				continue
			}
			d := open[i]
			open = append(open[:i], open[i+1:]...)
			d.EndLine = comment.Line
			d.AppliesTo = LineRange{Start: d.Line + 1, End: comment.Line - 1}
			addDirective(d, opts.Validator, result)
			continue
		case "-start":
			open = append(open, &Directive{
				Type:    TypeRange,
				Rules:   rules,
				Line:    comment.Line,
				EndLine: -1,
				RawText: comment.Text,
				Reason:  reason,
			})
			continue
		}

		d := &Directive{
			Rules:   rules,
			Line:    comment.Line,
			EndLine: -1,
			RawText: comment.Text,
			Reason:  reason,
		}
		if kind == "-all" {
			d.Type = TypeGlobal
			d.AppliesTo = GlobalRange()
		} else {
			d.Type = TypeNextLine
			d.AppliesTo = nextNonCommentLineRange(comment.Line, sm, opts.Extent)
		}
		addDirective(d, opts.Validator, result)
	}

	// Unterminated ranges run to the end of the file.
	for _, d := range open {
		result.Errors = append(result.Errors, ParseError{
			Line:    d.Line,
			Message: "typelint-ignore-start without a matching typelint-ignore-end",
			RawText: d.RawText,
		})
		d.AppliesTo = LineRange{Start: d.Line + 1, End: sm.LineCount() - 1}
		addDirective(d, opts.Validator, result)
	}

	return result
}

func parseComment(comment sourcemap.Comment) (string, []string, string, *ParseError) {
	matches := directivePattern.FindStringSubmatch(comment.Body)
	if matches == nil {
		return "", nil, "", &ParseError{
			Line:    comment.Line,
			Message: "malformed suppression comment",
			RawText: comment.Text,
		}
	}
	rules, err := parseRuleList(matches[2])
	if err != nil {
		return "", nil, "", &ParseError{
			Line:    comment.Line,
			Message: err.Error(),
			RawText: comment.Text,
		}
	}
	return matches[1], rules, strings.TrimSpace(matches[3]), nil
}

func lastMatchingStart(open []*Directive, rules []string) int {
	for i := len(open) - 1; i >= 0; i-- {
		if sameRules(open[i].Rules, rules) {
			return i
		}
	}
	return -1
}

// addDirective validates rule codes and adds the directive or errors.
func addDirective(d *Directive, validator RuleValidator, result *ParseResult) {
	if validator != nil {
		var unknownRules []string
		for _, rule := range d.Rules {
			if rule != "all" && !validator(rule) {
				unknownRules = append(unknownRules, rule)
			}
		}
		if len(unknownRules) > 0 {
			result.Errors = append(result.Errors, ParseError{
				Line:    d.Line,
				Message: "unknown rule code(s): " + strings.Join(unknownRules, ", "),
				RawText: d.RawText,
			})
		}
	}
	result.Directives = append(result.Directives, *d)
}

// parseRuleList parses a comma- or space-separated list of rule references.
// Returns an error if the list is empty.
func parseRuleList(s string) ([]string, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(parts) == 0 {
		return nil, &parseRuleError{msg: "empty rule list"}
	}
	return parts, nil
}

type parseRuleError struct {
	msg string
}

func (e *parseRuleError) Error() string {
	return e.msg
}

// nextNonCommentLineRange finds the range for the next non-comment line.
// If there is no next line (directive at end of file), returns an empty range
// that won't match any line.
func nextNonCommentLineRange(directiveLine int, sm *sourcemap.SourceMap, extent ExtentFunc) LineRange {
	lineCount := sm.LineCount()

	for i := directiveLine + 1; i < lineCount; i++ {
		// Skip empty lines and comments
		if strings.TrimSpace(sm.Line(i)) == "" || sm.IsCommentLine(i) {
			continue
		}
		end := i
		if extent != nil {
			end = max(end, extent(i))
		}
		return LineRange{Start: i, End: end}
	}

	return LineRange{Start: -1, End: -1}
}
