package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-sahara/trace"
)

func newTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded Sahara traces",
		Long:  ``,
	}
}

func newTraceDumpCmd() *cobra.Command {
	var session string
	var data bool

	cmd := &cobra.Command{
		Use:   "dump [trace-file]",
		Short: "Print the transfers of a recorded trace",
		Long:  ``,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := trace.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range trace.Sessions(events) {
				if session != "" && id != session {
					continue
				}
				recorded := trace.Session(events, id)
				pterm.Info.WithWriter(out).Printfln("session %s, %d transfers, started %s",
					id, len(recorded), recorded[0].Timestamp.Format("2006-01-02 15:04:05"))
				for _, e := range recorded {
					fmt.Fprintln(out, e.Summary())
					if data && len(e.Data) > 0 {
						fmt.Fprintf(out, "    % X\n", e.Data)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "only print this session")
	cmd.Flags().BoolVar(&data, "data", false, "print transfer bytes")
	return cmd
}
