package reporter

import (
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines shown around a change.
const diffContext = 2

type diffOp int

const (
	opEqual diffOp = iota
	opDelete
	opInsert
)

// diffRow is one line of a line diff. Old and New are 1-based line numbers;
// zero means the line does not exist on that side.
type diffRow struct {
	op   diffOp
	old  int
	new  int
	text string
}

// splitLines splits on '\n'. A trailing newline yields a final empty line,
// matching how the code frame numbers lines.
func splitLines(s string) []string {
	return strings.Split(s, "\n")
}

// lineRunes maps each distinct line to a rune so the character differ can
// diff whole lines.
type lineRunes struct {
	index map[string]rune
	lines []string
}

func (lr *lineRunes) encode(lines []string) []rune {
	out := make([]rune, len(lines))
	for i, l := range lines {
		r, ok := lr.index[l]
		if !ok {
			r = lineRune(len(lr.lines))
			lr.index[l] = r
			lr.lines = append(lr.lines, l)
		}
		out[i] = r
	}
	return out
}

// lineRune returns the rune standing for line n, stepping over the
// surrogate range.
func lineRune(n int) rune {
	r := rune(n) + 0x100
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}

// diffLines computes a line diff of before and after. Within a change,
// removed lines precede added lines.
func diffLines(before, after string) []diffRow {
	oldLines, newLines := splitLines(before), splitLines(after)
	lr := &lineRunes{index: make(map[string]rune)}
	a, b := lr.encode(oldLines), lr.encode(newLines)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMainRunes(a, b, false)

	var rows, pendingDel, pendingIns []diffRow
	flush := func() {
		rows = append(rows, pendingDel...)
		rows = append(rows, pendingIns...)
		pendingDel, pendingIns = pendingDel[:0], pendingIns[:0]
	}

	oldNo, newNo := 0, 0
	for _, d := range diffs {
		n := len([]rune(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			for range n {
				oldNo++
				newNo++
				rows = append(rows, diffRow{op: opEqual, old: oldNo, new: newNo, text: oldLines[oldNo-1]})
			}
		case diffmatchpatch.DiffDelete:
			for range n {
				oldNo++
				pendingDel = append(pendingDel, diffRow{op: opDelete, old: oldNo, text: oldLines[oldNo-1]})
			}
		case diffmatchpatch.DiffInsert:
			for range n {
				newNo++
				pendingIns = append(pendingIns, diffRow{op: opInsert, new: newNo, text: newLines[newNo-1]})
			}
		}
	}
	flush()
	return rows
}

// hunks selects the rows to display: every change plus up to diffContext
// unchanged rows on each side. Groups separated by hidden rows are
// returned separately.
func hunks(rows []diffRow) [][]diffRow {
	keep := make([]bool, len(rows))
	for i, r := range rows {
		if r.op == opEqual {
			continue
		}
		for j := max(0, i-diffContext); j <= min(len(rows)-1, i+diffContext); j++ {
			keep[j] = true
		}
	}

	var out [][]diffRow
	var cur []diffRow
	for i, r := range rows {
		if keep[i] {
			cur = append(cur, r)
			continue
		}
		if len(cur) > 0 {
			out = append(out, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// writeDiff renders the diff block for a fix turning before into after.
func (p *printer) writeDiff(before, after string) {
	groups := hunks(diffLines(before, after))
	if len(groups) == 0 {
		return
	}

	width := 1
	for _, g := range groups {
		for _, r := range g {
			width = max(width, len(strconv.Itoa(r.old)), len(strconv.Itoa(r.new)))
		}
	}
	blank := strings.Repeat(" ", width)

	for gi, g := range groups {
		if gi > 0 {
			p.line("    " + blank + " " + blank + " " + p.style(gutterStyle, "┆"))
		}
		for _, r := range g {
			text := strings.TrimSuffix(r.text, "\r")
			var sb strings.Builder
			sb.WriteString("    ")
			switch r.op {
			case opDelete:
				sb.WriteString(p.style(lineNumStyle, pad(r.old, width)) + " " + blank)
				sb.WriteString(" " + p.style(gutterStyle, "│") + " ")
				sb.WriteString(p.style(deleteStyle, strings.TrimRight("- "+visibleWhitespace(text), " ")))
			case opInsert:
				sb.WriteString(blank + " " + p.style(lineNumStyle, pad(r.new, width)))
				sb.WriteString(" " + p.style(gutterStyle, "│") + " ")
				sb.WriteString(p.style(insertStyle, strings.TrimRight("+ "+visibleWhitespace(text), " ")))
			default:
				sb.WriteString(p.style(lineNumStyle, pad(r.old, width)+" "+pad(r.new, width)))
				sb.WriteString(" " + p.style(gutterStyle, "│"))
				if t := strings.TrimRight(p.expandTabs(text), " "); t != "" {
					sb.WriteString("   " + t)
				}
			}
			p.line(strings.TrimRight(sb.String(), " "))
		}
	}
}

// visibleWhitespace shows spaces as '·' and tabs as '→'.
func visibleWhitespace(s string) string {
	return strings.NewReplacer(" ", "·", "\t", "→").Replace(s)
}

// pad right-aligns n in a field of width.
func pad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
