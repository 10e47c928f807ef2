package main

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-vibration/feature"
	"github.com/cwbudde/algo-vibration/internal/config"
)

// app carries the resolved configuration into subcommands.
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	var configFile string

	root := &cobra.Command{
		Use:           "vibefeat",
		Short:         "Vibration feature extraction",
		Long:          "vibefeat segments tri-axial vibration recordings into fixed-size windows\nand computes cepstral feature tensors for classifier training and inference.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v := config.New()
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			log, err := cfg.NewLogger(a.stderr)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			log.WithField("config", v.ConfigFileUsed()).Debug("configuration loaded")
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	def := feature.DefaultConfig()
	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default searches ./vibefeat.yaml, ~/.config/vibefeat, /etc/vibefeat)")
	pf.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.Float64("sample-rate", def.SampleRate, "sample rate in Hz")
	pf.Duration("frame-length", def.FrameLength, "inner frame length")
	pf.Duration("frame-step", def.FrameStep, "inner frame hop")
	pf.Int("num-cep", def.NumCep, "cepstral coefficients per frame")
	pf.Int("num-filters", def.NumFilters, "mel filters")
	pf.Int("nfft", def.NFFT, "FFT size")
	pf.Float64("low-freq", def.LowFreq, "lowest filterbank edge in Hz")
	pf.Float64("high-freq", def.HighFreq, "highest filterbank edge in Hz (0 = sample-rate/2)")
	pf.Float64("pre-emphasis", def.PreEmphasis, "pre-emphasis coefficient (<= 0 disables)")
	pf.Float64("lifter", def.Lifter, "lifter parameter (<= 0 disables)")
	pf.Bool("append-energy", def.AppendEnergy, "replace coefficient 0 with the frame log energy")
	pf.Bool("single-precision", def.SinglePrecision, "frame in float32")
	pf.Int("window-size", config.DefaultWindowSize, "rows per labeled window")

	root.AddCommand(newBuildCmd(a), newInspectCmd(a), newFiltersCmd(a))
	return root
}
