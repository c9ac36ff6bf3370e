package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleet-console/cmd/fleetctl/cli"
	"github.com/fleetops/fleet-console/internal/lov"
	"github.com/fleetops/fleet-console/internal/platform/cache"
	"github.com/fleetops/fleet-console/jobs"
)

// exitError carries a command's exit code out of cobra.
type exitError int

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		if code, ok := err.(exitError); ok {
			os.Exit(int(code))
		}
		fmt.Fprintln(os.Stderr, "fleetctl:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "fleetctl",
		Short:         "Operator tooling for the fleet console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newJobsCommand(), newLOVCommand())
	return root
}

func redisOptions() cache.Options {
	cfg := cache.Options{Addr: "127.0.0.1:6379"}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	cfg.Password = os.Getenv("REDIS_PASSWORD")
	return cfg
}

func newJobsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "jobs", Short: "Inspect and trigger background jobs"}

	var orgIDs []string
	trigger := &cobra.Command{
		Use:   "trigger <job>",
		Short: "Enqueue a job, e.g. " + jobs.TaskLOVCacheWarmup,
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			jc, err := cli.NewJobsCLI(redisOptions().AsynqOpts())
			if err != nil {
				return err
			}
			defer jc.Close()
			return exitCode(jc.TriggerCommand(c.Context(), cli.TriggerOptions{
				Job:    args[0],
				OrgIDs: orgIDs,
				Stdout: c.OutOrStdout(),
				Stderr: c.ErrOrStderr(),
			}))
		},
	}
	trigger.Flags().StringSliceVar(&orgIDs, "org", nil, "organisation ids to warm (defaults to the worker configuration)")

	var statsJSON bool
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show counters of the default queue",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			jc, err := cli.NewJobsCLI(redisOptions().AsynqOpts())
			if err != nil {
				return err
			}
			defer jc.Close()
			return exitCode(jc.StatsCommand(c.Context(), cli.StatsOptions{
				JSONOutput: statsJSON,
				Stdout:     c.OutOrStdout(),
				Stderr:     c.ErrOrStderr(),
			}))
		},
	}
	stats.Flags().BoolVar(&statsJSON, "json", false, "print JSON")

	cmd.AddCommand(trigger, stats)
	return cmd
}

func newLOVCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "lov", Short: "Browse lists of values"}

	var opts cli.BrowseOptions
	browse := &cobra.Command{
		Use:   "browse",
		Short: "List an organisation's lists of values",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			baseURL := os.Getenv("LOV_API_URL")
			if baseURL == "" {
				baseURL = "http://127.0.0.1:9090"
			}
			client := lov.NewClient(lov.ClientConfig{BaseURL: baseURL, Token: os.Getenv("LOV_API_TOKEN")})
			opts.Stdout = c.OutOrStdout()
			opts.Stderr = c.ErrOrStderr()
			return exitCode(cli.NewLOVCLI(client).BrowseCommand(c.Context(), opts))
		},
	}
	browse.Flags().StringVar(&opts.OrgID, "org", "", "organisation id (required)")
	browse.Flags().StringVar(&opts.Search, "search", "", "case-insensitive code or description filter")
	browse.Flags().StringVar(&opts.Status, "status", "", "Active or Inactive")
	browse.Flags().IntVar(&opts.Page, "page", 1, "page number")
	browse.Flags().BoolVar(&opts.JSONOutput, "json", false, "print JSON")

	cmd.AddCommand(browse)
	return cmd
}

func exitCode(code int) error {
	if code == 0 {
		return nil
	}
	return exitError(code)
}
