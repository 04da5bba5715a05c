package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sextant-dev/sextant/pkg/routefile"
	"github.com/sextant-dev/sextant/pkg/router"
)

func navigateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "navigate <url>",
		Aliases: []string{"match"},
		Short:   "Run a one-shot navigation against a route file",
		Long: `Match a URL against a route file and print the activated route
chain, captured parameters and the final URL after redirects.

Guards declared in the document are stubbed to allow everything;
use this command to check matching and redirect behavior, not
authorization.

Examples:
  sextant navigate /inbox/33
  sextant navigate --file=conf/routes.yaml "/team/5?tab=members"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNavigate(file, args[0])
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Route file (default from sextant.json)")

	return cmd
}

func runNavigate(file, url string) error {
	path, err := resolveRouteFile(file)
	if err != nil {
		return err
	}
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}

	reg, stubbed := permissiveRegistry(doc)
	if len(stubbed) > 0 {
		warn("stubbed guards and resolvers: %s", strings.Join(stubbed, ", "))
	}
	routes, err := doc.Build(reg)
	if err != nil {
		return err
	}

	source := routefile.NewFileSource(filepath.Dir(path), reg)
	r, err := router.New(routes, router.WithLoader(source))
	if err != nil {
		return err
	}

	ok, err := r.NavigateByURL(context.Background(), url)
	if err != nil {
		return err
	}
	if !ok {
		warn("navigation cancelled")
		return nil
	}

	snap := r.Snapshot()
	success("%s", snap.URL)
	fmt.Println()
	printActivations(snap.Root(), "  ")
	return nil
}

func printActivations(snap *router.ActivatedRouteSnapshot, indent string) {
	for _, child := range snap.Children() {
		label := "(componentless)"
		if c := child.Component(); c != nil {
			label = fmt.Sprint(c)
		}
		segments := make([]string, 0, len(child.URL))
		for _, seg := range child.URL {
			segments = append(segments, seg.String())
		}
		line := fmt.Sprintf("%s%s [%s]", indent, label, child.Outlet)
		if len(segments) > 0 {
			line += " " + strings.Join(segments, "/")
		}
		fmt.Println(line)
		if len(child.Params) > 0 {
			fmt.Printf("%s  params: %v\n", indent, child.Params)
		}
		printActivations(child, indent+"  ")
	}
}
