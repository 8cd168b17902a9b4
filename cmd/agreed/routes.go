package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/agreed/internal/build"
	"github.com/vango-dev/agreed/internal/errors"
	"github.com/vango-dev/agreed/pkg/router"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	var (
		match    string
		asJSON   bool
		showNavs bool
	)

	cmd := &cobra.Command{
		Use:   "routes [key]",
		Short: "Print the route table",
		Long: `Scan the views directory and print the derived route tree without writing
the artifact.

With a key, print the sub-routes of that descriptor, as a nested view
would receive them. Keys are slash-qualified ("users", "users/[id]");
dots are accepted as separators.

Examples:
  agreed routes
  agreed routes users
  agreed routes --match=/users/42
  agreed routes --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			builder := build.New(cfg, build.Options{Logger: newLogger(os.Stderr, flags.verbose)})
			plan, err := builder.Plan(context.Background())
			if err != nil {
				return err
			}
			resolver := router.NewResolver(plan.Routes)

			out := cmd.OutOrStdout()
			switch {
			case match != "":
				return printMatch(out, resolver, match, asJSON)
			case len(args) == 1:
				routes, ok := resolver.GetRoute(args[0])
				if !ok {
					return errors.Newf(errors.CategoryRoute, "no route with key %q", args[0]).
						WithSuggestion("Known keys: " + strings.Join(resolver.Keys(), ", "))
				}
				return printRoutes(out, routes, asJSON)
			case showNavs:
				if asJSON {
					return writeJSON(out, plan.Navs)
				}
				printNavs(out, plan.Navs, "")
				return nil
			default:
				return printRoutes(out, resolver.Routes(), asJSON)
			}
		},
	}

	cmd.Flags().StringVarP(&match, "match", "m", "", "Resolve a URL path to its descriptor")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.Flags().BoolVar(&showNavs, "navs", false, "Print the navigation tree")

	return cmd
}

func printMatch(w io.Writer, resolver *router.Resolver, path string, asJSON bool) error {
	d, params, ok := resolver.Match(path)
	if !ok {
		return errors.Newf(errors.CategoryRoute, "no route matches %s", path)
	}
	if asJSON {
		return writeJSON(w, struct {
			Route  router.RouteDescriptor `json:"route"`
			Params map[string]string      `json:"params"`
		}{d, params})
	}

	fmt.Fprintf(w, "%s -> %s (%s)\n", path, d.Path, d.Component.Source)
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s = %s\n", name, params[name])
	}
	return nil
}

func printRoutes(w io.Writer, routes []router.RouteDescriptor, asJSON bool) error {
	if asJSON {
		if routes == nil {
			routes = []router.RouteDescriptor{}
		}
		return writeJSON(w, routes)
	}
	writeRouteTree(w, routes, "")
	return nil
}

// writeRouteTree prints one line per descriptor, children indented. Exact
// descriptors are marked with "=".
func writeRouteTree(w io.Writer, routes []router.RouteDescriptor, indent string) {
	for _, d := range routes {
		mark := " "
		if d.Exact {
			mark = "="
		}
		fmt.Fprintf(w, "%s%s %-24s %s\n", indent, mark, d.Path, d.Component.Source)
		writeRouteTree(w, d.SubRoute, indent+"  ")
	}
}

func printNavs(w io.Writer, items []router.NavItem, indent string) {
	for _, item := range items {
		if item.Path != "" {
			fmt.Fprintf(w, "%s%s (%s)\n", indent, item.Title, item.Path)
		} else {
			fmt.Fprintf(w, "%s%s\n", indent, item.Title)
		}
		printNavs(w, item.Items, indent+"  ")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
