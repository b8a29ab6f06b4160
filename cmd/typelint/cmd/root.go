package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wharflab/typelint/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "typelint",
		Usage:   "A linter for TypeScript sources",
		Version: version.Version(),
		Description: `typelint reports TypeScript constructs that have a shorter spelling
and rewrites them on request.

Examples:
  typelint check src/
  typelint check --fix src/index.ts
  typelint check --fix --diff . > fixes.patch
  typelint apply fixes.patch`,
		Commands: []*cli.Command{
			checkCommand(),
			rulesCommand(),
			applyCommand(),
			configCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}
