package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytscribe/internal/captions"
)

func newTracksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks <video-id-or-url>",
		Short: "List the caption tracks published for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID, err := parseVideoArg(args[0])
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			client := captions.NewYouTubeClient(logger)
			tracks, err := client.List(cmd.Context(), videoID)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(tracks))
			for _, track := range tracks {
				rows = append(rows, []string{
					track.Language,
					track.Name,
					string(track.Origin),
					yesNo(track.Translatable),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Language", "Name", "Origin", "Translatable"},
				rows,
			))
			return nil
		},
	}
}
