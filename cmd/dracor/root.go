package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dracor"
	logpkg "github.com/kailas-cloud/dracor/internal/logger"
	"github.com/kailas-cloud/dracor/internal/transport/api"
	"github.com/kailas-cloud/dracor/internal/version"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dracor",
		Short:         "Query the DraCor drama corpora API",
		Long:          "dracor lists corpora, filters plays by field-path conditions and summarizes corpora\nusing the DraCor REST API.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := cmd.PersistentFlags()
	f.String("base-url", api.DefaultBaseURL, "DraCor API base URL")
	f.StringP("output", "o", "text", "output format: text or json")
	f.Duration("timeout", api.DefaultTimeout, "per-request timeout")
	f.BoolP("verbose", "v", false, "log requests to stderr")

	cmd.AddCommand(
		newInfoCmd(),
		newCorporaCmd(),
		newFilterCmd(),
		newAuthorsCmd(),
		newSummaryCmd(),
		newPlayCmd(),
	)
	return cmd
}

// clientFromCmd builds an SDK client from the persistent flags on cmd.
func clientFromCmd(ctx context.Context, cmd *cobra.Command) (*dracor.Client, error) {
	baseURL, _ := cmd.Flags().GetString("base-url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	verbose, _ := cmd.Flags().GetBool("verbose")

	opts := []dracor.Option{
		dracor.WithBaseURL(baseURL),
		dracor.WithTimeout(timeout),
	}
	if verbose {
		logger, err := logpkg.NewLogger("local", "debug")
		if err != nil {
			return nil, err
		}
		opts = append(opts, dracor.WithLogger(logger.With(zap.String("component", "cli"))))
	}
	return dracor.New(ctx, opts...)
}

// outputFormat returns "json" or "text" from the --output flag.
func outputFormat(cmd *cobra.Command) (string, error) {
	f, _ := cmd.Flags().GetString("output")
	switch f {
	case "json", "text":
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", f)
	}
}

// run wraps a command body with a client and printer.
func run(fn func(ctx context.Context, c *dracor.Client, p *printer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		c, err := clientFromCmd(ctx, cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		return fn(ctx, c, newPrinter(format, cmd.OutOrStdout()), args)
	}
}
