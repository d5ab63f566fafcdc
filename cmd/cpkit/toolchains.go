package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

func toolchainsCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "toolchains",
		Usage: "list known toolchains and the compiler each one resolves to",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			missing := color.New(color.FgYellow)
			for _, tc := range a.registry.All() {
				fmt.Printf("%-10s %-20s ", tc.Name, strings.Join(tc.Extensions, " "))
				path, err := tc.Resolve()
				if err != nil {
					missing.Println("not installed")
					continue
				}
				fmt.Println(path)
			}
			return nil
		},
	}
}
