package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yhkl-dev/PreviewCLI/config"
	"github.com/yhkl-dev/PreviewCLI/coverart"
	"github.com/yhkl-dev/PreviewCLI/device"
	"github.com/yhkl-dev/PreviewCLI/itunes"
	"github.com/yhkl-dev/PreviewCLI/library"
	"github.com/yhkl-dev/PreviewCLI/logging"
	"github.com/yhkl-dev/PreviewCLI/metrics"
	"github.com/yhkl-dev/PreviewCLI/playback"
	"github.com/yhkl-dev/PreviewCLI/player"
	"github.com/yhkl-dev/PreviewCLI/session"
	"github.com/yhkl-dev/PreviewCLI/ui"
)

func main() {
	cmd := &cobra.Command{
		Use:           "previewcli",
		Short:         "Search the iTunes catalog and play 30 second previews in the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	config.BindFlags(cmd.Flags())

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "previewcli:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, v, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}

	log, closer, err := logging.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()

	endPolicy, err := playback.ParseEndPolicy(cfg.Player.EndOfTrack)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Listen != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Listen, m, log); err != nil {
				log.WithError(err).Error("metrics listener stopped")
			}
		}()
	}

	mpvPlayer, err := player.NewMPVPlayer(ctx, log)
	if err != nil {
		return fmt.Errorf("audio output unavailable (is libmpv installed?): %w", err)
	}
	defer mpvPlayer.Close()

	controller := playback.NewController(mpvPlayer,
		playback.WithEndPolicy(endPolicy),
		playback.WithLogger(log),
		playback.WithMetrics(m),
	)
	defer controller.Close()

	client := itunes.Init(cfg.Search.Endpoint, cfg.Search.Country, cfg.Search.GetTimeout())
	lib := library.NewITunesLibrary(client, cfg.Search.Media, cfg.Search.Entity)

	// callbacks fire only after the UI runs
	var app *ui.App
	sess := session.New(lib, controller,
		session.WithLimit(cfg.Search.Limit),
		session.WithTimeout(cfg.Search.GetTimeout()),
		session.WithNotifier(func(n session.Notice) { app.Notify(n) }),
		session.WithLoadingFunc(func(loading bool) { app.SetLoading(loading) }),
		session.WithLogger(log),
		session.WithMetrics(m),
	)

	app = ui.NewApp(ctx, ui.Deps{
		Searcher:   sess,
		Controller: controller,
		Artwork:    coverart.NewConverter(nil, cfg.UI.ArtworkWidth, cfg.UI.ArtworkHeight),
		UI:         cfg.UI,
		Log:        log,
	})

	if v.ConfigFileUsed() != "" {
		config.Watch(v, func(updated *config.Config) {
			log.WithField("file", v.ConfigFileUsed()).Info("config reloaded")
			app.ApplyUIConfig(updated.UI)
		}, func(err error) {
			log.WithError(err).Warn("ignoring config change")
		})
	}

	monitor := device.NewAudioMonitor(nil, func() {
		log.Info("pausing after output device change")
		controller.Pause()
	}, log)
	go monitor.Run(ctx)

	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	log.WithFields(logrus.Fields{
		"endpoint": cfg.Search.Endpoint,
		"limit":    cfg.Search.Limit,
		"country":  cfg.Search.Country,
	}).Info("configuration loaded")

	return app.Run()
}
