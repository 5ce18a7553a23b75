package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-lide-client/internal/logging"
	"github.com/goliatone/go-lide-client/pkg/di"
)

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app is shared by every command; the container is built on first use so
// the persistent flags are already parsed.
type app struct {
	cfg       di.Config
	logOut    io.Writer
	container *di.Container
}

func (a *app) open() (*di.Container, error) {
	if a.container != nil {
		return a.container, nil
	}
	logger := logging.NewConsole(a.logOut, a.cfg.LogLevel)
	c, err := di.NewContainer(a.cfg, di.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("configure client: %w", err)
	}
	a.container = c
	return c, nil
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	cfg, err := di.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(logOut, "ignoring environment: %v\n", err)
		cfg = di.DefaultConfig()
	}
	a := &app{cfg: cfg, logOut: logOut}

	rootCmd := &cobra.Command{
		Use:           "lide",
		Short:         "Browse and edit the family knowledge base",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfg.BaseURL, "api", a.cfg.BaseURL, "backend base URL ($"+di.EnvAPIURL+")")
	flags.DurationVar(&a.cfg.HTTPTimeout, "timeout", a.cfg.HTTPTimeout, "HTTP request timeout ($"+di.EnvHTTPTimeout+")")
	flags.IntVar(&a.cfg.PageSize, "page-size", a.cfg.PageSize, "items per page ($"+di.EnvPageSize+")")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level ($"+di.EnvLogLevel+")")

	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(showCmd(a))
	rootCmd.AddCommand(personCmd(a))
	rootCmd.AddCommand(tagCmd(a))
	rootCmd.AddCommand(deleteCmd(a))
	rootCmd.AddCommand(linkCmd(a))
	rootCmd.AddCommand(relationCmd(a))

	return rootCmd
}
