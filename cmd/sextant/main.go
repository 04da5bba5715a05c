package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┌─┐─┐ ┬┌┬┐┌─┐┌┐┌┌┬┐
  ╚═╗├┤ ┌┴┬┘ │ ├─┤│││ │
  ╚═╝└─┘┴ └─ ┴ ┴ ┴┘└┘ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "sextant",
		Short: "Declarative URL routing for client-driven applications",
		Long: `Sextant matches URLs against a declarative route configuration.

Route documents declare nested paths, redirects, guards, resolvers
and lazily loaded children. The CLI works with those documents:

  • Parse URLs into their structured tree form
  • Inspect a route configuration
  • Run one-shot navigations against a route file
  • Serve the routing control plane over HTTP and websockets`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		parseCmd(),
		routesCmd(),
		navigateCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Sextant ASCII art banner.
func printBanner() {
	fmt.Print(banner)
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
