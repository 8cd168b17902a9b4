package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/agreed/internal/config"
	"github.com/vango-dev/agreed/internal/errors"
	"github.com/vango-dev/agreed/internal/templates"
)

type initOptions struct {
	dir        string
	template   string
	filePath   string
	viewsPath  string
	modelsPath string
	bare       bool
}

func initCmd() *cobra.Command {
	opts := initOptions{}

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create an agreed.json",
		Long: `Create an agreed.json in the given directory (default: the current one)
and scaffold starter views unless --bare is set. Existing files are never
overwritten.

Templates:
  minimal   A single index view
  full      Nested, dynamic and catch-all views plus a model (default)

Examples:
  agreed init
  agreed init web --template=minimal
  agreed init --file=internal/routes/routes_gen.go --bare`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.dir = "."
			if len(args) == 1 {
				opts.dir = args[0]
			}
			written, err := runInit(opts)
			if err != nil {
				return err
			}
			success("Created %s", config.ConfigFileName)
			for _, f := range written {
				info(f)
			}
			fmt.Println()
			info("Run 'agreed gen' to write %s", opts.filePath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "full", "Starter template (minimal, full)")
	cmd.Flags().StringVar(&opts.filePath, "file", config.DefaultFilePath, "Generated artifact path")
	cmd.Flags().StringVar(&opts.viewsPath, "views", config.DefaultViewsPath, "Views directory")
	cmd.Flags().StringVar(&opts.modelsPath, "models", "src/models", "Models directory (empty disables models)")
	cmd.Flags().BoolVar(&opts.bare, "bare", false, "Only write the config file")

	return cmd
}

// runInit writes the config and the starter files. It returns the starter
// files written, relative to the project directory.
func runInit(opts initOptions) ([]string, error) {
	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return nil, err
	}
	if config.Exists(dir) {
		return nil, errors.New("E146").
			WithDetail("A config file already exists in " + dir).
			WithSuggestion("Edit it, or remove it and run 'agreed init' again")
	}

	var tmpl *templates.Template
	if !opts.bare {
		if tmpl, err = templates.Get(opts.template); err != nil {
			return nil, err
		}
	}

	cfg := config.New()
	cfg.FilePath = opts.filePath
	cfg.ViewsPath = opts.viewsPath
	cfg.ModelsPath = opts.modelsPath
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, nil
	}

	return tmpl.Create(dir, templates.Config{
		ProjectName: filepath.Base(dir),
		ViewsPath:   cfg.ViewsPath,
		ModelsPath:  cfg.ModelsPath,
	})
}
