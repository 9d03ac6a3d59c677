package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/daemon"
	"git.home.luguber.info/inful/pivot/internal/logfields"
	"git.home.luguber.info/inful/pivot/internal/metrics"
	"git.home.luguber.info/inful/pivot/internal/pipeline"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	DryRun bool `name:"dry-run" help:"Plan only; never hand off or record processed commits"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	path, err := config.Discover(root.Config)
	if err != nil {
		return err
	}

	reg := prom.NewRegistry()
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)
	mode := pipeline.ModeExecute
	if w.DryRun {
		mode = pipeline.ModeDryRun
	}
	logger := g.Logger

	run := func(ctx context.Context, cfg *config.Config) error {
		rt, err := newRuntime(cfg, logger, recorder, mode == pipeline.ModeExecute)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := rt.Close(); cerr != nil {
				logger.Warn("Failed to close run resources", logfields.Error(cerr))
			}
		}()
		_, err = rt.pipeline.Run(ctx, cfg.Repositories, mode)
		return err
	}

	d, err := daemon.New(path, cfg, run,
		daemon.WithRegistry(reg),
		daemon.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx)
}
