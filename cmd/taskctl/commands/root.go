// Package commands implements the taskctl command tree.
package commands

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/tasktracker/internal/httputil"
)

const defaultServer = "http://127.0.0.1:3000"

type options struct {
	server  string
	timeout time.Duration
}

func (o *options) client() *httputil.Client {
	return httputil.NewClient(httputil.ClientConfig{BaseURL: o.server, Timeout: o.timeout})
}

// NewRootCmd builds a fresh taskctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "taskctl",
		Short: "taskctl - client for the task tracker API",
		Long: `taskctl talks to a running task tracker server.

Examples:
  taskctl user create alice
  taskctl task create <USER_ID> --title "buy milk" --description 2%
  taskctl task update <USER_ID> <TASK_ID> --status Done`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	server := os.Getenv("TASKTRACKER_SERVER")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&opts.server, "server", server, "Task tracker base URL (env TASKTRACKER_SERVER)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	root.AddCommand(newUserCmd(opts), newTaskCmd(opts), newHealthCmd(opts))
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health and store sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := opts.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), h)
		},
	}
}
