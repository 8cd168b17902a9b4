package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/agreed/internal/build"
	"github.com/vango-dev/agreed/internal/config"
	"github.com/vango-dev/agreed/pkg/fstree"
)

func genCmd(flags *globalFlags) *cobra.Command {
	var (
		output string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate the route and model artifact",
		Long: `Scan the views and models directories and write the generated artifact.

The artifact is only rewritten when its generated region changes. Code
between the manual markers is preserved. On a route conflict or a duplicate
model name nothing is written and the previous artifact stays in place.

Examples:
  agreed gen
  agreed gen --output=src/routes.ts
  agreed gen --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if output != "" {
				cfg.FilePath = output
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if dryRun {
				return runPreview(ctx, cfg, flags, os.Stdout)
			}
			return runGen(ctx, cfg, flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Artifact path (default from agreed.json)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the artifact instead of writing it")

	return cmd
}

func runGen(ctx context.Context, cfg *config.Config, flags *globalFlags) error {
	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}

	builder := build.New(cfg, build.Options{
		Logger:    newLogger(os.Stderr, flags.verbose),
		Publisher: publisher,
		OnProgress: func(step string) {
			if flags.verbose {
				info(step)
			}
		},
	})

	result, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	if result.Skipped {
		warn("agreed is disabled (enable: false), nothing generated")
		return nil
	}

	printWarnings(result.Warnings)
	success("%s %s in %s", result.Emit.Status, cfg.FilePath, result.Duration.Round(time.Millisecond))
	info("hash %s", result.Emit.Hash)
	return nil
}

func runPreview(ctx context.Context, cfg *config.Config, flags *globalFlags, w io.Writer) error {
	builder := build.New(cfg, build.Options{Logger: newLogger(os.Stderr, flags.verbose)})
	out, plan, err := builder.Preview(ctx)
	if err != nil {
		return err
	}
	// stdout carries the artifact only.
	for _, warning := range plan.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	_, err = w.Write(out)
	return err
}

func printWarnings(warnings []fstree.Warning) {
	for _, w := range warnings {
		warn("%s", w)
	}
	if len(warnings) > 0 {
		fmt.Println()
	}
}
