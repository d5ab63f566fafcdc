package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/programme-lv/cpkit/internal/behave"
	"github.com/urfave/cli/v3"
)

func behaveCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "behave",
		Usage:     "run judging scenarios from TOML files",
		ArgsUsage: "<file.toml>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return fmt.Errorf("expected at least one scenario file")
			}
			r := behave.NewRunner(a.driver, a.registry, a.cfg.WorkDir, nil, a.log)

			pass := color.New(color.FgGreen, color.Bold)
			fail := color.New(color.FgRed, color.Bold)
			failed := 0
			for _, path := range cmd.Args().Slice() {
				suite, err := behave.Parse(path)
				if err != nil {
					return err
				}
				results, err := r.RunSuite(ctx, suite, a.sig)
				if err != nil {
					return err
				}
				for _, res := range results {
					if res.Passed() {
						pass.Print("PASS ")
						fmt.Println(res.Name)
						continue
					}
					failed++
					fail.Print("FAIL ")
					fmt.Println(res.Name)
					for _, m := range res.Mismatches {
						fmt.Println("     " + m)
					}
				}
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d scenarios failed", failed), 1)
			}
			return nil
		},
	}
}
