package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	liftmcp "github.com/claude/liftlog/internal/mcp"
)

// MCPOptions holds flags for the mcp command.
type MCPOptions struct {
	Remote string
	APIKey string
}

// NewMCPCommand creates the mcp command.
func NewMCPCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MCPOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve read-only training data to an assistant over MCP (stdio)",
		Long: `Serve read-only training data over the Model Context Protocol on stdin/stdout.

By default the local store is opened directly. With --remote the data is
read from a running "liftlog serve" instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Remote, "remote", "", "base URL of a liftlog server, e.g. http://127.0.0.1:8087")
	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "API key for --remote (defaults to server.api_key)")

	return cmd
}

func runMCP(rootOpts *RootOptions, opts *MCPOptions, cmd *cobra.Command) (err error) {
	// stdout carries the protocol; logs go to stderr or the log file.
	var a *app
	var ds liftmcp.DataSource
	if opts.Remote != "" {
		a, err = loadConfig(rootOpts, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		key := opts.APIKey
		if key == "" {
			key = a.cfg.Server.APIKey
		}
		ds = liftmcp.NewHTTPClient(opts.Remote, key)
		a.log.Info("mcp using remote store", "url", opts.Remote)
	} else {
		a, err = openApp(cmd.Context(), rootOpts, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		ds = liftmcp.NewLocal(a.db, a.engine)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return server.ServeStdio(liftmcp.New(ds, rootOpts.Version, a.log))
}
