package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/programme-lv/cpkit/internal/storage"
	"github.com/urfave/cli/v3"
)

func problemsCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "problems",
		Usage: "manage imported problems",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list problems, newest first",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, err := a.problems()
					if err != nil {
						return err
					}
					cur, _ := store.Current()
					bold := color.New(color.Bold)
					for _, p := range store.List() {
						line := fmt.Sprintf("%s  %-40s %2d tests  %s", p.ID.String()[:8], p.Name, len(p.Tests), p.Group)
						if cur != nil && cur.ID == p.ID {
							bold.Println("* " + line)
							continue
						}
						fmt.Println("  " + line)
					}
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "show a problem, the current one by default",
				ArgsUsage: "[id]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, err := a.problems()
					if err != nil {
						return err
					}
					p, err := findOrCurrent(store, cmd.Args().First())
					if err != nil {
						return err
					}
					fmt.Printf("%s\n  id:      %s\n  group:   %s\n  url:     %s\n", p.Name, p.ID, p.Group, p.URL)
					fmt.Printf("  limits:  %s, %d MB\n", p.TimeLimit(), p.MemoryLimitMB)
					if p.SourceFile != nil {
						fmt.Printf("  source:  %s\n", *p.SourceFile)
					}
					if p.LastRun != nil {
						fmt.Printf("  run at:  %s\n", p.LastRun.Local().Format("2006-01-02 15:04"))
					}
					for i, tc := range p.Tests {
						fmt.Printf("  %3d  %-4s %s\n", i+1, tc.Status.Short(), preview(tc.Input))
					}
					return nil
				},
			},
			{
				Name:      "use",
				Usage:     "make a problem current",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, err := a.problems()
					if err != nil {
						return err
					}
					p, err := store.Find(cmd.Args().First())
					if err != nil {
						return err
					}
					return store.SetCurrent(p.ID)
				},
			},
			{
				Name:      "rm",
				Usage:     "delete a problem",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, err := a.problems()
					if err != nil {
						return err
					}
					p, err := store.Find(cmd.Args().First())
					if err != nil {
						return err
					}
					return store.Delete(p.ID)
				},
			},
			{
				Name:      "export",
				Usage:     "write all problems to a compressed archive",
				ArgsUsage: "<file>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected an archive path")
					}
					store, err := a.problems()
					if err != nil {
						return err
					}
					f, err := os.Create(cmd.Args().First())
					if err != nil {
						return err
					}
					if err := storage.Export(f, store.List()); err != nil {
						f.Close()
						return err
					}
					return f.Close()
				},
			},
			{
				Name:      "import",
				Usage:     "add the problems of an archive",
				ArgsUsage: "<file>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected an archive path")
					}
					f, err := os.Open(cmd.Args().First())
					if err != nil {
						return err
					}
					defer f.Close()
					problems, err := storage.Import(f)
					if err != nil {
						return err
					}
					store, err := a.problems()
					if err != nil {
						return err
					}
					for _, p := range problems {
						if err := store.Put(p); err != nil {
							return err
						}
					}
					fmt.Printf("imported %d problems\n", len(problems))
					return nil
				},
			},
		},
	}
}

func findOrCurrent(store *storage.ProblemStore, ref string) (*models.Problem, error) {
	if ref != "" {
		return store.Find(ref)
	}
	p, ok := store.Current()
	if !ok {
		return nil, fmt.Errorf("%w: no current problem", storage.ErrProblemNotFound)
	}
	return p, nil
}
