package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/typelint/internal/rules"
	_ "github.com/wharflab/typelint/internal/rules/all" // Register all rules
)

// ruleInfo is the JSON shape of one listed rule.
type ruleInfo struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Severity    string   `json:"severity"`
	Enabled     bool     `json:"enabled"`
	Fix         string   `json:"fix"`
	Description string   `json:"description"`
	DocURL      string   `json:"docUrl,omitempty"`
	Sources     []string `json:"sources,omitempty"`
}

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "List available rules",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "category",
				Usage: "Only list rules of this category",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the rule list as JSON",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			registry := rules.DefaultRegistry()
			list := registry.All()
			if cat := cmd.String("category"); cat != "" {
				list = registry.ByCategory(cat)
			}

			infos := make([]ruleInfo, 0, len(list))
			for _, r := range list {
				meta := r.Metadata()
				infos = append(infos, ruleInfo{
					Code:        meta.Code,
					Name:        meta.Name,
					Category:    meta.Category,
					Severity:    meta.DefaultSeverity.String(),
					Enabled:     meta.EnabledByDefault,
					Fix:         fixKindName(meta.FixKind),
					Description: meta.Description,
					DocURL:      meta.DocURL,
					Sources:     meta.Sources,
				})
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			fmt.Println(rulesTable(infos).String())
			return nil
		},
	}
}

func fixKindName(k rules.FixKind) string {
	switch k {
	case rules.FixKindSafe:
		return "safe"
	case rules.FixKindUnsafe:
		return "unsafe"
	default:
		return "none"
	}
}

// rulesTable lays out rules as a borderless table.
func rulesTable(infos []ruleInfo) *table.Table {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{info.Code, info.Severity, info.Fix, info.Description})
	}

	return table.New().
		Headers("RULE", "SEVERITY", "FIX", "DESCRIPTION").
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderRow(false).
		BorderColumn(false).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
