// Command deployctl triggers deployments and inspects the deployment queue
// through the engine HTTP API.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	server  string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "deployctl",
		Short:        "Deploy resources and inspect queued deployments",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("STACKHOOK_URL", "http://localhost:8080"), "engine base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("STACKHOOK_TOKEN"), "bearer token")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "request timeout")

	root.AddCommand(
		newDeployCmd(opts),
		newDeploymentsCmd(opts),
		newDeploymentCmd(opts),
	)
	return root
}

func newDeployCmd(opts *options) *cobra.Command {
	var uuids, tags string
	var force bool
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy resources by uuid or tag",
		Example: `  deployctl deploy --uuid app-1,db-2
  deployctl deploy --tag production --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if uuids == "" && tags == "" {
				return errors.New("one of --uuid or --tag is required")
			}
			body, err := client(opts).Deploy(cmd.Context(), uuids, tags, force)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	cmd.Flags().StringVar(&uuids, "uuid", "", "comma-separated resource uuids")
	cmd.Flags().StringVar(&tags, "tag", "", "comma-separated tag names")
	cmd.Flags().BoolVar(&force, "force", false, "force a rebuild of applications")
	cmd.MarkFlagsMutuallyExclusive("uuid", "tag")
	return cmd
}

func newDeploymentsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deployments",
		Short: "List queued and in-progress deployments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := client(opts).Deployments(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
}

func newDeploymentCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deployment <uuid>",
		Short: "Show one deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client(opts).Deployment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
}

func client(opts *options) *apiClient {
	return newAPIClient(opts.server, opts.token, opts.timeout)
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
