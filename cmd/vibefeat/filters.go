package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-vibration/dsp/mel"
)

func newFiltersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "Print the mel filterbank boundary bins and row sums",
		Long: "filters builds the mel filterbank for the current configuration and prints\n" +
			"each filter's boundary bins. It fails when two boundaries collapse onto one bin.",
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.filters()
		},
	}
}

func (a *app) filters() error {
	fb, err := mel.NewFilterBank(a.cfg.Features.MelParams())
	if err != nil {
		return err
	}

	p := fb.Params()
	bins := fb.Bins()
	binHz := p.SampleRate / float64(p.NFFT+1)

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Filter\tLow bin\tCenter bin\tHigh bin\tCenter [Hz]\tRow sum\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "------\t-------\t----------\t--------\t-----------\t-------\n"); err != nil {
		return err
	}

	for j := range fb.NumFilters() {
		if _, err := fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.1f\t%.4f\n",
			j, bins[j], bins[j+1], bins[j+2], float64(bins[j+1])*binHz, fb.RowSum(j),
		); err != nil {
			return err
		}
	}

	return tw.Flush()
}
