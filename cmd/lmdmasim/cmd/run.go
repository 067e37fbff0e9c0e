package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/pkg/browser"
	"github.com/sarchlab/lmdma/lmdma"
	"github.com/sarchlab/lmdma/monitoring"
	"github.com/sarchlab/lmdma/tracing"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a transfer in every channel, trigger mode and direction.",
	Long: "`run` brings the local memories and the LMDMA engine up on a " +
		"simulated core, moves a block of words in every channel, trigger " +
		"mode and direction, and checks the data that arrives.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig(".env")
		if err != nil {
			return err
		}

		applyRunFlags(cmd, &c)

		monitor, _ := cmd.Flags().GetBool("monitor")
		open, _ := cmd.Flags().GetBool("open")
		hold, _ := cmd.Flags().GetBool("hold")

		return runScenario(c, runOptions{
			monitor: monitor || open || c.MonitorPort != 0,
			open:    open,
			hold:    hold,
			out:     cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	d := defaultConfig()
	runCmd.Flags().Float64("freq-mhz", d.FreqMHz, "DMA engine frequency in MHz")
	runCmd.Flags().Uint32("bytes-per-cycle", d.BytesPerCycle,
		"bytes the DMA engine moves per cycle")
	runCmd.Flags().Uint32("hw-version", d.Version, "DMA engine version")
	runCmd.Flags().Int("channels", d.Channels, "number of DMA channels (1 or 2)")
	runCmd.Flags().Uint32("elements", d.Elements, "words per transfer")
	runCmd.Flags().String("trace", "",
		"trace transfers and register accesses into this SQLite database")
	runCmd.Flags().Int("port", 0, "monitor port, random if not set")
	runCmd.Flags().Bool("monitor", false, "serve the monitor while running")
	runCmd.Flags().Bool("open", false, "open the monitor in a browser")
	runCmd.Flags().Bool("hold", false,
		"keep the monitor up after the run until interrupted")
}

// applyRunFlags overrides the loaded configuration with the flags that were
// given on the command line.
func applyRunFlags(cmd *cobra.Command, c *Config) {
	flags := cmd.Flags()

	if flags.Changed("freq-mhz") {
		c.FreqMHz, _ = flags.GetFloat64("freq-mhz")
	}

	if flags.Changed("bytes-per-cycle") {
		c.BytesPerCycle, _ = flags.GetUint32("bytes-per-cycle")
	}

	if flags.Changed("hw-version") {
		c.Version, _ = flags.GetUint32("hw-version")
	}

	if flags.Changed("channels") {
		c.Channels, _ = flags.GetInt("channels")
	}

	if flags.Changed("elements") {
		c.Elements, _ = flags.GetUint32("elements")
	}

	if flags.Changed("trace") {
		c.TracePath, _ = flags.GetString("trace")
	}

	if flags.Changed("port") {
		c.MonitorPort, _ = flags.GetInt("port")
	}
}

type runOptions struct {
	monitor bool
	open    bool
	hold    bool
	out     io.Writer
}

func runScenario(c Config, opts runOptions) error {
	s, err := newScenario(c)
	if err != nil {
		return err
	}

	if c.TracePath != "" {
		tracer := attachTracer(s, c.TracePath)
		defer tracer.Terminate()
	}

	var (
		monitor *monitoring.Monitor
		tracker transferTracker
	)

	if opts.monitor {
		monitor = attachMonitor(s, c.MonitorPort, opts.open)

		total, err := s.numTransfers()
		if err != nil {
			return err
		}

		bar := monitor.CreateProgressBar("Transfers", uint64(total))
		defer monitor.CompleteProgressBar(bar)
		tracker = bar
	}

	results, err := s.runAll(tracker)
	if err != nil {
		return err
	}

	failed := report(opts.out, results)

	if monitor != nil && opts.hold {
		fmt.Fprintln(os.Stderr, "Run finished, press Ctrl-C to exit")
		interrupted := make(chan os.Signal, 1)
		signal.Notify(interrupted, os.Interrupt)
		<-interrupted
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d transfers failed", failed, len(results))
	}

	return nil
}

func attachTracer(s *scenario, path string) *tracing.DBTracer {
	writer := tracing.NewSQLiteTraceWriter(path)
	writer.Init()

	tracer := tracing.NewDBTracer(s.engine, writer)
	tracing.CollectTrace(s.dma, tracer)
	s.soc.DMA.TraceTransfers(tracer)
	s.soc.Regs.AcceptHook(tracing.NewAccessTracer(s.engine, writer))

	return tracer
}

func attachMonitor(s *scenario, port int, open bool) *monitoring.Monitor {
	monitor := monitoring.NewMonitor()
	if port != 0 {
		monitor = monitor.WithPortNumber(port)
	}

	monitor.RegisterEngine(s.engine)
	monitor.RegisterComponent(s.dma)
	monitor.RegisterComponent(s.soc.DMA)
	monitor.RegisterRegisterFile(s.soc.Regs)

	url := monitor.StartServer()
	if open {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open a browser: %s\n", err)
		}
	}

	return monitor
}

// report prints a line per transfer and returns how many failed.
func report(out io.Writer, results []Result) int {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tTRIGGER\tDIRECTION\tSTATUS\tDATA\tTIME (ns)")

	failed := 0
	for _, r := range results {
		data := "ok"
		if !r.Matched {
			data = "mismatch"
		}

		if r.Status != lmdma.StatusOK || !r.Matched {
			failed++
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.1f\n",
			r.Channel, r.Mode, r.Direction, r.Status, data,
			float64(r.Duration)*1e9)
	}

	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot write the report: %s\n", err)
	}

	return failed
}
