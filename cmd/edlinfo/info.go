package main

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-sahara/attributes"
	"github.com/moffa90/go-sahara/logging"
	"github.com/moffa90/go-sahara/sahara"
	"github.com/moffa90/go-sahara/simulator"
	"github.com/moffa90/go-sahara/trace"
	"github.com/moffa90/go-sahara/transport"
	"github.com/moffa90/go-sahara/transport/serialport"
)

// Identity of the device answered by --simulate.
const (
	simulatedSerial = 0x789EE21B
	simulatedHWID   = 0x007F10E1_0000_0000
)

type infoOptions struct {
	port         string
	baud         int
	timeout      time.Duration
	helloTimeout time.Duration
	attrs        []string
	codes        string
	tracePath    string
	replay       string
	session      string
	simulate     bool
	reset        bool
	debug        bool
}

func newInfoCmd() *cobra.Command {
	o := &infoOptions{}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Run one Sahara session and print the device attributes",
		Long: `Waits for the device Hello, switches it to command mode and queries each
requested attribute. Attributes the device refuses are listed as unsupported.

The device has to be re-entered into EDL mode between runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.port, "port", "p", "", "serial device node of the EDL device")
	f.IntVar(&o.baud, "baud", serialport.DefaultBaudRate, "baud rate for --port")
	f.DurationVar(&o.timeout, "timeout", 5*time.Second, "per-reply timeout")
	f.DurationVar(&o.helloTimeout, "hello-timeout", 5*time.Second, "time to wait for the device Hello")
	f.StringSliceVarP(&o.attrs, "attrs", "a", nil, "attributes to query (default serial-number,hardware-id)")
	f.StringVar(&o.codes, "codes", "", "YAML attribute table overriding the built-in command codes")
	f.StringVar(&o.tracePath, "trace", "", "append a CBOR trace of every transfer to this file")
	f.StringVar(&o.replay, "replay", "", "replay a recorded trace instead of talking to a device")
	f.StringVar(&o.session, "session", "", "session ID to replay (default the last one in the trace)")
	f.BoolVar(&o.simulate, "simulate", false, "talk to a built-in simulated device")
	f.BoolVar(&o.reset, "reset", false, "reset the device when the session completes")
	f.BoolVar(&o.debug, "debug", false, "log every transfer")

	cmd.MarkFlagsMutuallyExclusive("port", "replay", "simulate")
	cmd.MarkFlagsOneRequired("port", "replay", "simulate")
	return cmd
}

func runInfo(cmd *cobra.Command, o *infoOptions) error {
	logger := logging.NewConsole(cmd.ErrOrStderr(), o.debug)
	defer logger.Sync()

	opts := []sahara.Option{
		sahara.WithLogger(logging.New(logger)),
		sahara.WithTimeout(o.timeout),
		sahara.WithHelloTimeout(o.helloTimeout),
		sahara.WithResetOnComplete(o.reset),
	}
	if o.debug {
		progress := pterm.Debug.WithWriter(cmd.ErrOrStderr())
		progress.Debugger = false
		opts = append(opts, sahara.WithProgressCallback(func(p sahara.Progress) {
			progress.Printfln("%-9s %5.1f%% %s", p.Phase, p.Percentage, p.Attribute)
		}))
	}

	if o.codes != "" {
		table, err := attributes.Parse(o.codes)
		if err != nil {
			return fmt.Errorf("loading attribute table %s: %w", o.codes, err)
		}
		opts = append(opts, sahara.WithAttributeTable(table))
	}

	kinds := make([]attributes.Kind, 0, len(o.attrs))
	for _, a := range o.attrs {
		kinds = append(kinds, attributes.Kind(a))
	}

	t, closeTransport, err := o.openTransport()
	if err != nil {
		return err
	}
	defer closeTransport()

	if o.tracePath != "" {
		rec, err := trace.Create(o.tracePath, t)
		if err != nil {
			return fmt.Errorf("creating trace: %w", err)
		}
		defer rec.Close()
		t = rec
		logger.Sugar().Infow("recording trace", "path", o.tracePath, "session", rec.SessionID())
	}

	result, err := sahara.New(t, opts...).RunSession(cmd.Context(), kinds...)
	if result != nil {
		printResult(cmd.OutOrStdout(), result)
	}
	return err
}

// openTransport picks the device source selected on the command line.
func (o *infoOptions) openTransport() (transport.Transport, func(), error) {
	switch {
	case o.simulate:
		dev := simulator.New(
			simulator.WithSerialNumber(simulatedSerial),
			simulator.WithHardwareID(simulatedHWID),
		)
		return dev, func() {}, nil

	case o.replay != "":
		events, err := trace.Load(o.replay)
		if err != nil {
			return nil, nil, fmt.Errorf("loading trace: %w", err)
		}
		sessions := trace.Sessions(events)
		if len(sessions) == 0 {
			return nil, nil, fmt.Errorf("no sessions in %s", o.replay)
		}
		id := o.session
		if id == "" {
			id = sessions[len(sessions)-1]
		}
		recorded := trace.Session(events, id)
		if len(recorded) == 0 {
			return nil, nil, fmt.Errorf("session %s not found in %s", id, o.replay)
		}
		return trace.NewReplayer(recorded), func() {}, nil

	default:
		p, err := serialport.Open(serialport.Config{Path: o.port, BaudRate: o.baud})
		if err != nil {
			return nil, nil, err
		}
		return p, func() { p.Close() }, nil
	}
}

func printResult(w io.Writer, r *sahara.Result) {
	pterm.Info.WithWriter(w).Printfln("Sahara v%d (compatible v%d), max command length %d, mode %s",
		r.Info.Version, r.Info.MinCompatibleVersion, r.Info.MaxCommandLength, r.Info.Mode)

	data := pterm.TableData{{"Attribute", "Value"}}
	for _, v := range r.Attributes {
		data = append(data, []string{string(v.Kind), formatValue(v)})
	}
	pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}
