package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-vibration/dataset"
	"github.com/cwbudde/algo-vibration/feature"
	"github.com/cwbudde/algo-vibration/internal/recording"
	timestats "github.com/cwbudde/algo-vibration/stats/time"
)

type inspectResult struct {
	Source     string                  `json:"source"`
	Window     int                     `json:"window"`
	Shape      [3]int                  `json:"shape"`
	Indicators [3]timestats.Indicators `json:"indicators"`
	CHW        []float32               `json:"chw,omitempty"`
}

func newInspectCmd(a *app) *cobra.Command {
	var (
		windowIdx int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <file.csv>",
		Short: "Compute and print the feature tensor of one recording window",
		Long: "inspect runs the inference preprocessing on a single CSV recording.\n" +
			"Without --window the file must hold exactly window-size rows.",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.inspect(args[0], windowIdx, asJSON)
		},
	}

	cmd.Flags().IntVar(&windowIdx, "window", -1, "window index to inspect in a longer recording")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tensor as channel-first JSON")
	return cmd
}

func (a *app) inspect(path string, windowIdx int, asJSON bool) error {
	ex, err := feature.NewExtractor(a.cfg.Features)
	if err != nil {
		return err
	}

	rec, err := recording.NewReader().ReadFile(path)
	if err != nil {
		return err
	}

	if windowIdx >= 0 {
		windows, err := dataset.Segment(rec, a.cfg.WindowSize)
		if err != nil {
			return err
		}
		if windowIdx >= len(windows) {
			return fmt.Errorf("%s has %d windows, --window %d out of range", path, len(windows), windowIdx)
		}
		rec = dataset.Recording{ID: rec.ID, Axes: windows[windowIdx].Axes}
	}

	t, err := dataset.Preprocess(ex, rec, a.cfg.WindowSize)
	if err != nil {
		return err
	}

	res := inspectResult{
		Source:     rec.ID,
		Window:     max(windowIdx, 0),
		Shape:      t.Shape(),
		Indicators: timestats.Axes(rec.Axes),
	}
	if asJSON {
		res.CHW = t.CHW()
		return json.NewEncoder(a.stdout).Encode(res)
	}

	return printTensor(a, res, t)
}

func printTensor(a *app, res inspectResult, t *feature.Tensor) error {
	if _, err := fmt.Fprintf(a.stdout, "source %s, window %d, shape %v\n", res.Source, res.Window, res.Shape); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprint(tw, "\naxis\trms\tpeak\tcrest\tkurtosis\tskewness\t\n")
	for ch, ind := range res.Indicators {
		_, _ = fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%.3f\t%.3f\t%.3f\t\n",
			ch, ind.RMS, ind.Peak, ind.CrestFactor, ind.Kurtosis, ind.Skewness)
	}
	for ch := range feature.Channels {
		_, _ = fmt.Fprintf(tw, "\naxis %d\t\n", ch)
		_, _ = fmt.Fprint(tw, "frame\t")
		for c := range t.Coeffs {
			_, _ = fmt.Fprintf(tw, "c%d\t", c)
		}
		_, _ = fmt.Fprintln(tw)
		for f := range t.Frames {
			_, _ = fmt.Fprintf(tw, "%d\t", f)
			for c := range t.Coeffs {
				_, _ = fmt.Fprintf(tw, "%.4f\t", t.At(f, c, ch))
			}
			_, _ = fmt.Fprintln(tw)
		}
	}
	return tw.Flush()
}
