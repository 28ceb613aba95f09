package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/lmeyer/fedidigest/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	// A .env next to the binary is convenient for local runs; the
	// OS environment wins when there isn't one.
	_ = gotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fedidigest",
		Short: "Build a ranked HTML digest from your Mastodon home timeline",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(verbose)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(buildCmd())
	root.AddCommand(demoCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func buildCmd() *cobra.Command {
	var (
		hours    int
		strategy string
		tone     string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fetch the timeline once and publish a digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(buildOpts{
				hours:    hours,
				strategy: strategy,
				tone:     tone,
				output:   output,
			})
		},
	}

	cmd.Flags().IntVarP(&hours, "hours", "n", 0, "timeline window in hours (default: from config)")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "scoring strategy: Simple, SimpleWeighted, Weighted, ExtendedWeighted")
	cmd.Flags().StringVarP(&tone, "tone", "t", "", "selection tone: lax, normal, strict")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory")
	return cmd
}

func demoCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Render a digest from canned posts, no credentials needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory")
	return cmd
}

func historyCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived digest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(limit, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the published digest and run archive over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon: rebuild on a schedule and serve over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
