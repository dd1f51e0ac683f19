package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "edlinfo",
		Short:         "Read device identity from a Qualcomm EDL device over Sahara",
		Long:          ``,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	traceCmd := newTraceCmd()
	traceCmd.AddCommand(newTraceDumpCmd())

	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(newPortsCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		pterm.Error.Println(err)
		if advice := Classify(err); advice != AdviceNone {
			pterm.Info.Println(advice.Hint())
		}
		stop()
		os.Exit(1)
	}
}
