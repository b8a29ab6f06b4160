package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wharflab/typelint/internal/patch"
)

func applyCommand() *cli.Command {
	return &cli.Command{
		Name:      "apply",
		Usage:     "Apply a patch written by check --fix --diff",
		ArgsUsage: "PATCH",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "root",
				Usage: "Directory the patch paths are relative to",
				Value: ".",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				fmt.Fprintf(os.Stderr, "Error: expected exactly one patch file\n")
				return cli.Exit("", ExitConfigError)
			}

			results, err := patch.ApplyFile(cmd.Args().First(), cmd.String("root"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return cli.Exit("", ExitConfigError)
			}
			for _, r := range results {
				fmt.Fprintf(os.Stderr, "patched %s\n", r.Path)
			}
			return nil
		},
	}
}
