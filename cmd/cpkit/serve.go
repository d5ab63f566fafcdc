package main

import (
	"context"
	"fmt"

	"github.com/programme-lv/cpkit/internal/companion"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func serveCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "receive problems from the Competitive Companion browser extension",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides the config"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, err := a.problems()
			if err != nil {
				return err
			}
			addr := a.cfg.Companion.Addr
			if cmd.IsSet("addr") {
				addr = cmd.String("addr")
			}

			received := make(chan *models.Problem, 16)
			srv := companion.New(addr, store, a.log)
			srv.OnProblem = func(p *models.Problem) {
				select {
				case received <- p:
				default:
				}
			}

			ctx, stop := context.WithCancel(ctx)
			defer stop()
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(gctx)
			})
			g.Go(func() error {
				// The first interrupt stops serving.
				select {
				case <-gctx.Done():
				case <-a.sig.Done():
					stop()
				}
				return nil
			})
			g.Go(func() error {
				for {
					select {
					case <-gctx.Done():
						return nil
					case p := <-received:
						fmt.Printf("received %q (%d tests), now current\n", p.Name, len(p.Tests))
					}
				}
			})

			fmt.Printf("listening on %s\n", srv.Addr())
			return g.Wait()
		},
	}
}
