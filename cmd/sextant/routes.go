package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sextant-dev/sextant/internal/config"
	"github.com/sextant-dev/sextant/pkg/routefile"
)

func routesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route configuration",
		Long: `Print the route tree declared in a route file.

Without --file the route file is taken from sextant.json in the
current project.

Examples:
  sextant routes
  sextant routes --file=conf/routes.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Route file (default from sextant.json)")

	return cmd
}

// resolveRouteFile returns the route file path, from the flag or the project
// configuration.
func resolveRouteFile(file string) (string, error) {
	if file != "" {
		return file, nil
	}
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return "", err
	}
	if cfg.Routes.S3 != nil {
		return "", fmt.Errorf("project uses an S3 route source; pass --file to inspect a local file")
	}
	return cfg.RoutesPath(), nil
}

func loadDocument(file string) (*routefile.Document, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return routefile.Parse(data)
}

func runRoutes(file string) error {
	path, err := resolveRouteFile(file)
	if err != nil {
		return err
	}
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}

	success("%s", path)
	fmt.Println()
	printSpecs(doc.Routes, "  ")
	return nil
}

func printSpecs(specs []routefile.RouteSpec, indent string) {
	for _, spec := range specs {
		path := spec.Path
		if path == "" {
			path = "''"
		}
		var notes []string
		if spec.Component != "" {
			notes = append(notes, spec.Component)
		}
		if spec.RedirectTo != "" {
			notes = append(notes, "→ "+spec.RedirectTo)
		}
		if spec.Outlet != "" {
			notes = append(notes, "outlet="+spec.Outlet)
		}
		if guards := guardNames(spec); len(guards) > 0 {
			notes = append(notes, "guards: "+strings.Join(guards, ","))
		}
		if spec.LoadChildren != "" {
			notes = append(notes, "lazy: "+spec.LoadChildren)
		}

		if len(notes) > 0 {
			fmt.Printf("%s%-20s %s\n", indent, path, strings.Join(notes, "  "))
		} else {
			fmt.Printf("%s%s\n", indent, path)
		}
		printSpecs(spec.Children, indent+"  ")
	}
}

func guardNames(spec routefile.RouteSpec) []string {
	var names []string
	names = append(names, spec.CanActivate...)
	names = append(names, spec.CanActivateChild...)
	names = append(names, spec.CanDeactivate...)
	names = append(names, spec.CanLoad...)
	return names
}
