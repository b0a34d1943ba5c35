package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download <url>",
		Short: "Run the downloader into the inbox without organizing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runner, err := ctx.downloader()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			err = runner.Fetch(cmd.Context(), args[0], cfg.Paths.InboxDir, func(line string) {
				fmt.Fprintln(out, line)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Download complete; files are in %s\n", cfg.Paths.InboxDir)
			return nil
		},
	}
}
