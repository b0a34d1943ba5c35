package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chorus/internal/media"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var scanLibrary bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Preview inbox files and their resolved metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			organizer, err := ctx.organizer()
			if err != nil {
				return err
			}
			var preview []media.Track
			if scanLibrary {
				preview, err = organizer.LibraryPreview(limit)
			} else {
				preview, err = organizer.ScanPreview(limit)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(preview) == 0 {
				if scanLibrary {
					fmt.Fprintln(out, "Library is empty.")
				} else {
					fmt.Fprintln(out, "Inbox is empty.")
				}
				return nil
			}
			rows := make([][]string, 0, len(preview))
			for _, track := range preview {
				rows = append(rows, []string{
					track.Title,
					track.Artist,
					track.Album,
					humanize.IBytes(uint64(track.SizeBytes)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Artist", "Album", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of files to preview (0 = all)")
	cmd.Flags().BoolVar(&scanLibrary, "library", false, "Walk the organized library tree instead of the inbox")
	return cmd
}
