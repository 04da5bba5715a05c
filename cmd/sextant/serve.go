package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/sextant-dev/sextant/internal/config"
	"github.com/sextant-dev/sextant/pkg/history"
	"github.com/sextant-dev/sextant/pkg/host"
	"github.com/sextant-dev/sextant/pkg/middleware"
	"github.com/sextant-dev/sextant/pkg/routefile"
	"github.com/sextant-dev/sextant/pkg/router"
)

func serveCmd() *cobra.Command {
	var (
		port     int
		bindHost string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the routing control plane",
		Long: `Run the control-plane server for the project's route configuration.

The server exposes JSON endpoints to parse URLs, run navigations
and inspect the committed state, Prometheus metrics on /metrics,
and a websocket endpoint driving one router engine per session.

Examples:
  sextant serve
  sextant serve --port=8080
  sextant serve --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, bindHost)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from sextant.json)")
	cmd.Flags().StringVarP(&bindHost, "host", "H", "", "Host to bind to (default from sextant.json)")

	return cmd
}

func runServe(port int, bindHost string) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Host.Port = port
	}
	if bindHost != "" {
		cfg.Host.Host = bindHost
	}

	logger := cfg.NewLogger(os.Stderr)

	routes, loader, err := loadRouteSource(cfg)
	if err != nil {
		return err
	}

	hostConfig := host.Config{
		Addr:   cfg.HostAddress(),
		Routes: routes,
		Loader: loader,
		Logger: logger,
	}

	if cfg.Journal.Enabled {
		journal, err := history.OpenJournal(cfg.JournalPath())
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer journal.Close()
		hostConfig.Journal = journal
	}
	if cfg.Metrics.Enabled {
		hostConfig.Observers = append(hostConfig.Observers,
			middleware.Prometheus(middleware.WithNamespace(cfg.Metrics.Namespace)))
	}

	server, err := host.New(hostConfig)
	if err != nil {
		return err
	}

	printBanner()
	fmt.Println()
	if cfg.Name != "" {
		info("project: %s", cfg.Name)
	}
	success("serving on http://%s", cfg.HostAddress())
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Serve(ctx)
}

// loadRouteSource builds the route configuration and lazy loader for the
// configured source. Guards and resolvers named in the documents are stubbed
// permissively; the serve command checks matching and redirect behavior, not
// authorization.
func loadRouteSource(cfg *config.Config) ([]*router.Route, router.RouteLoader, error) {
	if cfg.Routes.S3 != nil {
		return loadS3Source(cfg.Routes.S3)
	}

	path := cfg.RoutesPath()
	doc, err := loadDocument(path)
	if err != nil {
		return nil, nil, err
	}
	reg, stubbed := permissiveRegistry(doc)
	if len(stubbed) > 0 {
		warn("stubbed guards and resolvers: %s", strings.Join(stubbed, ", "))
	}
	routes, err := doc.Build(reg)
	if err != nil {
		return nil, nil, err
	}
	return routes, routefile.NewFileSource(filepath.Dir(path), reg), nil
}

func loadS3Source(s3cfg *config.S3Config) ([]*router.Route, router.RouteLoader, error) {
	client := s3.New(s3.Options{Region: s3cfg.Region})

	key := s3cfg.Prefix + s3cfg.Key
	out, err := client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s3cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("get s3://%s/%s: %w", s3cfg.Bucket, key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read s3://%s/%s: %w", s3cfg.Bucket, key, err)
	}

	doc, err := routefile.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	reg, stubbed := permissiveRegistry(doc)
	if len(stubbed) > 0 {
		warn("stubbed guards and resolvers: %s", strings.Join(stubbed, ", "))
	}
	routes, err := doc.Build(reg)
	if err != nil {
		return nil, nil, err
	}
	return routes, routefile.NewS3Source(client, s3cfg.Bucket, s3cfg.Prefix, reg), nil
}
