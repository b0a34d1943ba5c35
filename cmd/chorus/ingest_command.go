package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chorus/internal/ingest"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var sourceURL string
	var keepInbox bool

	cmd := &cobra.Command{
		Use:   "ingest <playlist-name>",
		Short: "Organize inbox files into the library and sync the playlist",
		Long: `Ingest moves every audio file waiting in the inbox into the
library's artist/album tree, skipping titles already present in their
destination folder, then creates the named playlist or merges the new
tracks into it. With --url the downloader fills the inbox first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pipeline, cleanup, err := ctx.pipeline()
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			opts := ingest.Options{
				PlaylistName:   args[0],
				SourceURL:      sourceURL,
				KeepInboxFiles: keepInbox || cfg.Ingest.KeepInboxFiles,
				OnLine: func(line string) {
					fmt.Fprintln(out, line)
				},
			}

			report, err := pipeline.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printReport(out, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceURL, "url", "u", "", "Playlist URL to download into the inbox first")
	cmd.Flags().BoolVar(&keepInbox, "keep-inbox-files", false, "Leave processed files in the inbox")
	return cmd
}
