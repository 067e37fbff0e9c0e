package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/sarchlab/lmdma/device"
	"github.com/sarchlab/lmdma/lm"
	"github.com/sarchlab/lmdma/sim"
	"github.com/spf13/cobra"
)

var lmSizeCmd = &cobra.Command{
	Use:   "lmsize [code...]",
	Short: "Print the local memory size of each size code.",
	Long: "`lmsize` reads the size of the local memories of a simulated core " +
		"built with each given size code, or with every code when none is " +
		"given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		codes, err := parseCodes(args)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tILM\tDLM")

		for _, code := range codes {
			ilm, dlm := readLMSizes(code)
			fmt.Fprintf(w, "%d\t%s\t%s\n", code, formatSize(ilm), formatSize(dlm))
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(lmSizeCmd)
}

func parseCodes(args []string) ([]uint32, error) {
	if len(args) == 0 {
		codes := make([]uint32, 16)
		for i := range codes {
			codes[i] = uint32(i)
		}

		return codes, nil
	}

	codes := make([]uint32, 0, len(args))
	for _, a := range args {
		code, err := strconv.ParseUint(a, 0, 4)
		if err != nil {
			return nil, fmt.Errorf("size code %q: %w", a, err)
		}

		codes = append(codes, uint32(code))
	}

	return codes, nil
}

// readLMSizes asks the driver for the local memory sizes of a core whose
// memories use the given size code.
func readLMSizes(code uint32) (ilm, dlm uint32) {
	soc := device.MakeBuilder().
		WithEngine(sim.NewSerialEngine()).
		WithLMSizeCodes(code, code).
		Build("SoC")
	driver := lm.New(soc.Regs)

	return driver.Size(lm.ILM), driver.Size(lm.DLM)
}

func formatSize(size uint32) string {
	switch {
	case size == 0:
		return "reserved"
	case size >= 1<<20:
		return fmt.Sprintf("%dMB", size>>20)
	default:
		return fmt.Sprintf("%dKB", size>>10)
	}
}
