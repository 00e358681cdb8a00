package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "livetuner",
		Short: "Real-time chromatic tuner",
		Long: "livetuner listens to an input device, estimates the fundamental pitch " +
			"and shows the nearest note with its deviation in cents.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLive(cmd.Context(), o)
		},
	}
	addEngineFlags(root.PersistentFlags(), o)
	addCaptureFlags(root.Flags(), o)

	root.AddCommand(newAnalyzeCmd(o))
	return root
}
