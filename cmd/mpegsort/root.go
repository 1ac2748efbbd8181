package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "mpegsort",
		Short:         "Sort MP3 and MP4 files by their content signature",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newSortCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
