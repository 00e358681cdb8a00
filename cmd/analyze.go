package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xlemi/livetuner/internal/audio"
	"github.com/0xlemi/livetuner/internal/engine"
)

func newAnalyzeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Run the tuner over a WAV file and print each reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(os.Stderr, o.logLevel)
			if err != nil {
				return err
			}
			cfg, mode, err := o.engineConfig(logger)
			if err != nil {
				return err
			}
			if o.every < 1 {
				return fmt.Errorf("--every must be positive, got %d", o.every)
			}

			src, err := audio.OpenWAV(args[0], o.chunkSize)
			if err != nil {
				return err
			}
			eng, err := engine.New(cfg)
			if err != nil {
				return err
			}
			eng.SetMode(mode)
			if err := eng.Start(float64(src.SampleRate())); err != nil {
				return err
			}
			defer eng.Stop()

			out := cmd.OutOrStdout()
			rate := float64(src.SampleRate())
			samples, passes := 0, 0
			err = src.Stream(cmd.Context(), func(chunk []float32) {
				eng.Process(chunk)
				samples += len(chunk)
				if samples < eng.FFTSize() {
					return
				}
				passes++
				if passes%o.every != 0 {
					return
				}
				r := eng.Latest()
				fmt.Fprintf(out, "%8.3fs  %9.2f Hz  %-4s %+6.1f cents\n",
					float64(samples)/rate, r.Frequency, r.Note, r.Note.Cents)
			})
			if err != nil {
				return err
			}

			r := eng.Latest()
			fmt.Fprintf(out, "%d passes over %.2fs, final %.2f Hz %s %+.1f cents\n",
				passes, float64(samples)/rate, r.Frequency, r.Note, r.Note.Cents)
			return nil
		},
	}
	cmd.Flags().IntVar(&o.every, "every", 10, "print every n-th analysis pass")
	return cmd
}
