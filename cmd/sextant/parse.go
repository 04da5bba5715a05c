package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <url>",
		Short: "Parse a URL into its structured tree form",
		Long: `Parse a URL and print its segment groups, matrix parameters,
query parameters and fragment.

Examples:
  sextant parse /inbox/33;mode=edit
  sextant parse "/team/5/(members//side:panel)?q=go#top"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(args[0])
		},
	}
	return cmd
}

func runParse(url string) error {
	tree, err := urltree.Parse(url)
	if err != nil {
		return err
	}

	success("parsed %s", url)
	info("canonical: %s", urltree.Serialize(tree))
	fmt.Println()
	if len(tree.Root.Children) == 0 {
		info("(root)")
	}
	outlets := sortedOutlets(tree.Root)
	for _, name := range outlets {
		printGroup(tree.Root.Children[name], name, "  ")
	}

	if tree.Query.Len() > 0 {
		fmt.Println()
		info("query:")
		tree.Query.Each(func(key, value string) {
			fmt.Printf("    %s = %s\n", key, value)
		})
	}
	if tree.Fragment != "" {
		fmt.Println()
		info("fragment: %s", tree.Fragment)
	}
	return nil
}

func printGroup(g *urltree.SegmentGroup, outlet, indent string) {
	if len(g.Segments) > 0 {
		parts := make([]string, 0, len(g.Segments))
		for _, seg := range g.Segments {
			parts = append(parts, seg.String())
		}
		fmt.Printf("%s%s: %s\n", indent, outlet, strings.Join(parts, "/"))
	} else {
		fmt.Printf("%s%s\n", indent, outlet)
	}

	for _, name := range sortedOutlets(g) {
		printGroup(g.Children[name], name, indent+"  ")
	}
}

func sortedOutlets(g *urltree.SegmentGroup) []string {
	outlets := make([]string, 0, len(g.Children))
	for name := range g.Children {
		outlets = append(outlets, name)
	}
	sort.Strings(outlets)
	return outlets
}
