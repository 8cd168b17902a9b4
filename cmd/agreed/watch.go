package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/agreed/internal/build"
	"github.com/vango-dev/agreed/internal/dev"
	"github.com/vango-dev/agreed/internal/errors"
)

func watchCmd(flags *globalFlags) *cobra.Command {
	var poll bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the artifact on every change",
		Long: `Generate the artifact, then watch the views and models directories and
regenerate after changes settle (dev.debounce, 200ms by default).

Bursts of changes are coalesced into one rebuild, and at most one rebuild
runs at a time. A failed rebuild is reported and the previous artifact is
kept; the next change triggers a fresh attempt.

Examples:
  agreed watch
  agreed watch --poll`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if poll {
				cfg.Dev.Poll = true
			}
			debounce, err := cfg.DebounceDuration()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			publisher, err := newPublisher(ctx, cfg)
			if err != nil {
				return err
			}
			logger := newLogger(os.Stderr, flags.verbose)
			builder := build.New(cfg, build.Options{Logger: logger, Publisher: publisher})

			start := time.Now()
			result, err := builder.Build(ctx)
			reportRebuild(dev.RebuildEvent{Result: result, Err: err, Duration: time.Since(start)})

			roots := []string{cfg.ViewsDir()}
			if cfg.HasModels() {
				roots = append(roots, cfg.ModelsDir())
			}
			session, err := dev.Watch(ctx, dev.WatchOptions{
				Roots:     roots,
				Ignore:    cfg.Ignore,
				Exclude:   []string{cfg.ArtifactPath()},
				Debounce:  debounce,
				Poll:      cfg.Dev.Poll,
				Rebuild:   builder.Build,
				OnRebuild: reportRebuild,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			info("Watching %s (%s)", strings.Join(roots, ", "), session.Mode())
			info("Press Ctrl+C to stop")

			<-ctx.Done()
			session.Stop()
			info("Stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&poll, "poll", false, "Poll for changes instead of using OS notifications")

	return cmd
}

// reportRebuild prints the outcome of one rebuild.
func reportRebuild(ev dev.RebuildEvent) {
	if ev.Err != nil {
		for _, e := range errors.ClassifyAll(ev.Err) {
			errorMsg("%s", e.FormatCompact())
		}
		return
	}
	if ev.Result == nil || ev.Result.Skipped {
		return
	}

	printWarnings(ev.Result.Warnings)
	if ev.Result.Emit != nil {
		success("%s in %s (hash %s)", ev.Result.Emit.Status, ev.Duration.Round(time.Millisecond), ev.Result.Emit.Hash)
	}
}
