package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/programme-lv/cpkit/internal/cancel"
	"github.com/programme-lv/cpkit/internal/environment"
	"github.com/programme-lv/cpkit/internal/logging"
	"github.com/programme-lv/cpkit/internal/process"
	"github.com/programme-lv/cpkit/internal/storage"
	"github.com/programme-lv/cpkit/internal/toolchain"
	"github.com/urfave/cli/v3"
)

// app holds what every command needs. It is filled in by the root Before
// hook.
type app struct {
	cfg      *environment.Config
	log      *slog.Logger
	registry *toolchain.Registry
	driver   *process.Driver
	sig      *cancel.Signal
}

func main() {
	ctx, abort := context.WithCancel(context.Background())
	defer abort()

	a := &app{sig: cancel.New()}
	go a.watchInterrupts(ctx, abort)

	if err := rootCommand(a).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cpkit:", err)
		os.Exit(1)
	}
}

func rootCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  environment.AppName,
		Usage: "compile and judge competitive programming solutions locally",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the TOML config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, a.setup(cmd.String("config"), cmd.String("log-level"))
		},
		Commands: []*cli.Command{
			judgeCommand(a),
			runCommand(a),
			testsCommand(a),
			problemsCommand(a),
			serveCommand(a),
			behaveCommand(a),
			toolchainsCommand(a),
		},
	}
}

func (a *app) setup(configPath, level string) error {
	cfg, err := environment.Load(configPath)
	if err != nil {
		return err
	}
	if level != "" {
		cfg.LogLevel = level
	}
	log, err := logging.Setup(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.Debug("config loaded", "sources", cfg.Source)

	reg := toolchain.DefaultRegistry()
	if cfg.ToolchainsFile != "" {
		if err := reg.LoadFile(cfg.ToolchainsFile); err != nil {
			return err
		}
	}

	a.cfg = cfg
	a.log = log
	a.registry = reg
	a.driver = process.NewDriver(
		process.WithPollInterval(cfg.PollInterval()),
		process.WithLogger(log),
	)
	return nil
}

func (a *app) problems() (*storage.ProblemStore, error) {
	return storage.OpenProblemStore(a.cfg.ProblemsDir(), a.log)
}

// watchInterrupts turns the first SIGINT into a cancellation request for the
// operation in flight. A second one aborts the whole command.
func (a *app) watchInterrupts(ctx context.Context, abort context.CancelFunc) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
		}
		if a.sig.Requested() {
			fmt.Fprintln(os.Stderr, "aborting")
			abort()
			return
		}
		fmt.Fprintln(os.Stderr, "stopping, press Ctrl+C again to abort")
		a.sig.Request()
	}
}
