package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chorus/internal/media"
	"chorus/internal/services"
	"chorus/internal/tags"
)

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	playlistCmd := &cobra.Command{
		Use:   "playlist",
		Short: "Inspect and maintain playlist documents",
	}

	playlistCmd.AddCommand(newPlaylistListCommand(ctx))
	playlistCmd.AddCommand(newPlaylistShowCommand(ctx))
	playlistCmd.AddCommand(newPlaylistCreateCommand(ctx))
	playlistCmd.AddCommand(newPlaylistAddCommand(ctx))

	return playlistCmd
}

func tracksFromArgs(paths []string) ([]media.Track, error) {
	trackList := make([]media.Track, 0, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "playlist", "resolve", fmt.Sprintf("resolve %q", path), err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, services.Wrap(services.ErrValidation, "playlist", "resolve", fmt.Sprintf("stat %q", path), err)
		}
		if !media.IsAudioFile(abs) {
			return nil, services.Wrap(services.ErrValidation, "playlist", "resolve", fmt.Sprintf("%q is not a supported audio file", path), nil)
		}
		track, _ := tags.Extract(abs)
		trackList = append(trackList, track)
	}
	return trackList, nil
}

func newPlaylistCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <playlist-name> <audio-file>...",
		Short: "Create a playlist from the given audio files",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.playlistStore()
			if err != nil {
				return err
			}
			trackList, err := tracksFromArgs(args[1:])
			if err != nil {
				return err
			}
			path, err := store.Create(trackList, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d track(s) to %s\n", len(trackList), path)
			return nil
		},
	}
}

func newPlaylistAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <playlist-name> <audio-file>...",
		Short: "Append audio files to an existing playlist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.playlistStore()
			if err != nil {
				return err
			}
			trackList, err := tracksFromArgs(args[1:])
			if err != nil {
				return err
			}
			result, err := store.AddToExisting(trackList, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d track(s), skipped %d duplicate(s); playlist now has %d song(s)\n",
				result.Added, result.Duplicates, result.TotalSongs)
			return nil
		},
	}
}

func newPlaylistListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List playlist files in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.playlistStore()
			if err != nil {
				return err
			}
			infos, err := store.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(infos) == 0 {
				fmt.Fprintln(out, "No playlists found.")
				return nil
			}
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{
					info.Name,
					humanize.IBytes(uint64(info.SizeBytes)),
					info.Path,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Size", "Path"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
}

func newPlaylistShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <playlist-name>",
		Short: "Print the tracks recorded in a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.playlistStore()
			if err != nil {
				return err
			}
			tracks, err := store.Read(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tracks) == 0 {
				fmt.Fprintln(out, "Playlist is empty.")
				return nil
			}
			rows := make([][]string, 0, len(tracks))
			for i, track := range tracks {
				duration := time.Duration(track.DurationMS) * time.Millisecond
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					track.Title,
					track.Artist,
					track.Album,
					duration.Truncate(time.Second).String(),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Title", "Artist", "Album", "Length"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
}
