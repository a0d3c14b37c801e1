package cli

import (
	"github.com/spf13/cobra"

	"github.com/planwright/blockplan/internal/api"
	"github.com/planwright/blockplan/pkg/pipeline"
)

// serveCommand creates the HTTP API server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		flags cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP solve API",
		Long: `Run the HTTP solve API.

Endpoints:
  POST /v1/solve            solve a layout from a JSON request
  GET  /v1/rulesets/default the embedded dental ruleset
  GET  /healthz             liveness probe

The server shares the solve cache with the CLI; use --redis-url or
--mongo-uri to back it with a shared store instead of local files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newCache(cmd, flags)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(store, nil, c.Logger)
			defer runner.Close()

			srv := api.NewServer(runner, c.Logger)
			printInfo("Serving on %s", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	flags.register(cmd)

	return cmd
}
