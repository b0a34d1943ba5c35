package main

import (
	"fmt"
	"io"

	"chorus/internal/ingest"
)

func printReport(out io.Writer, report ingest.Report) {
	if report.Moved == 0 && report.InboxDuplicates == 0 && report.Failures == 0 {
		fmt.Fprintln(out, "Nothing to ingest: inbox is empty.")
		return
	}

	rows := [][]string{
		{"Files moved", fmt.Sprintf("%d", report.Moved)},
		{"Inbox duplicates", fmt.Sprintf("%d", report.InboxDuplicates)},
		{"Failures", fmt.Sprintf("%d", report.Failures)},
		{"Playlist created", yesNo(report.PlaylistCreated)},
		{"Tracks added to playlist", fmt.Sprintf("%d", report.PlaylistAdded)},
		{"Playlist duplicates", fmt.Sprintf("%d", report.PlaylistDuplicates)},
		{"Playlist total", fmt.Sprintf("%d", report.TotalSongs)},
	}
	fmt.Fprintln(out, renderTable([]string{"Result", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
	if report.PlaylistPath != "" {
		fmt.Fprintf(out, "Playlist: %s\n", report.PlaylistPath)
	}
}
