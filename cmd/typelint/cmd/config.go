package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wharflab/typelint/internal/config"
	"github.com/wharflab/typelint/internal/rules"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage typelint configuration",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a .typelint.toml listing every rule with its defaults",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Where to write the config file",
						Value: config.ConfigFileNames[0],
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
					&cli.BoolFlag{
						Name:  "stdout",
						Usage: "Print the config instead of writing it",
					},
				},
				Action: runConfigInit,
			},
		},
	}
}

func runConfigInit(_ context.Context, cmd *cli.Command) error {
	metas := make([]rules.RuleMetadata, 0)
	for _, r := range rules.All() {
		metas = append(metas, r.Metadata())
	}

	data, err := config.Template(config.Default(), metas)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	if cmd.Bool("stdout") {
		_, err := os.Stdout.Write(data)
		return err
	}

	path := cmd.String("path")
	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
		return cli.Exit("", ExitConfigError)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}
