package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/agreed/internal/config"
	"github.com/vango-dev/agreed/internal/errors"
	"github.com/vango-dev/agreed/internal/publish"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
	noColor    bool
}

func main() {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "agreed",
		Short: "Convention-driven route and model registration",
		Long: `agreed derives a route table and a model registry from your
directory layout and writes them to a single generated file.

  • File-based nested routes with dynamic and catch-all segments
  • Model registry keyed by file path
  • Manual region preserved across regenerations
  • Debounced watch mode and a development API`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default: agreed.json in the project root)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		initCmd(),
		genCmd(&flags),
		watchCmd(&flags),
		devCmd(&flags),
		routesCmd(&flags),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads and validates the project configuration.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns the CLI logger. Build logs are debug-level noise unless
// --verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newPublisher returns the S3 publisher when publishing is configured.
func newPublisher(ctx context.Context, cfg *config.Config) (publish.Publisher, error) {
	if !cfg.HasPublish() {
		return nil, nil
	}
	p, err := publish.NewS3Publisher(ctx, publish.Options{
		Bucket:   cfg.Publish.Bucket,
		Prefix:   cfg.Publish.Prefix,
		Region:   cfg.Publish.Region,
		Endpoint: cfg.Publish.Endpoint,
	})
	if err != nil {
		return nil, errors.New("E206").Wrap(err).WithDetail(err.Error())
	}
	return p, nil
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
