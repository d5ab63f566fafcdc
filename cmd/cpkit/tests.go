package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/programme-lv/cpkit/internal/models"
	"github.com/programme-lv/cpkit/internal/storage"
	"github.com/urfave/cli/v3"
)

func testsCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "tests",
		Usage: "manage the tests stored next to a source file",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "list tests and their latest verdicts",
				ArgsUsage: "<source>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					src, err := sourceArg(cmd)
					if err != nil {
						return err
					}
					tests, err := storage.LoadTests(src)
					if err != nil {
						return err
					}
					if len(tests) == 0 {
						fmt.Println("no tests")
						return nil
					}
					for i, tc := range tests {
						fmt.Printf("%3d  %-4s %s\n", i+1, tc.Status.Short(), preview(tc.Input))
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "add a test from files or literal strings",
				ArgsUsage: "<source>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "input text"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "expected output text"},
					&cli.StringFlag{Name: "input-file", Usage: "read input from a file"},
					&cli.StringFlag{Name: "output-file", Usage: "read expected output from a file"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					src, err := sourceArg(cmd)
					if err != nil {
						return err
					}
					in, err := textOrFile(cmd, "input")
					if err != nil {
						return err
					}
					out, err := textOrFile(cmd, "output")
					if err != nil {
						return err
					}
					tests, err := storage.LoadTests(src)
					if err != nil {
						return err
					}
					tests = append(tests, models.NewTestCase(in, out))
					if err := storage.SaveTests(src, tests); err != nil {
						return err
					}
					fmt.Printf("added test %d\n", len(tests))
					return nil
				},
			},
			{
				Name:      "rm",
				Usage:     "remove a test by its 1-based number",
				ArgsUsage: "<source> <n>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("expected a source file and a test number")
					}
					n, err := strconv.Atoi(cmd.Args().Get(1))
					if err != nil {
						return fmt.Errorf("invalid test number %q", cmd.Args().Get(1))
					}
					src := cmd.Args().First()
					tests, err := storage.LoadTests(src)
					if err != nil {
						return err
					}
					if n < 1 || n > len(tests) {
						return fmt.Errorf("test %d does not exist, there are %d tests", n, len(tests))
					}
					tests = append(tests[:n-1], tests[n:]...)
					return storage.SaveTests(src, tests)
				},
			},
		},
	}
}

// textOrFile reads the literal flag name or, when set, the name-file flag.
func textOrFile(cmd *cli.Command, name string) (string, error) {
	if path := cmd.String(name + "-file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return cmd.String(name), nil
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " ..."
	}
	if len(s) > 60 {
		s = s[:60] + "..."
	}
	return s
}
