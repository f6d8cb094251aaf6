package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var languages []string
	var model string
	var outputPath string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "transcribe <video-id-or-url>",
		Short: "Fetch the transcript for a video",
		Long: "Resolves a transcript from the video's caption tracks, falling back to\n" +
			"downloading the audio and transcribing it with whisper when no usable\n" +
			"captions exist. The transcript is written to stdout unless --output is set.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID, err := parseVideoArg(args[0])
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(languages) > 0 {
				cfg.Captions.Languages = languages
			}
			if strings.TrimSpace(model) != "" {
				cfg.STT.Model = strings.TrimSpace(model)
			}

			p, cleanup, err := ctx.buildPipeline(noCache)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := p.Run(cmd.Context(), videoID)
			if err != nil {
				if cmd.Context().Err() != nil {
					return cmd.Context().Err()
				}
				// Details are already in the logs on stderr.
				return fmt.Errorf("no transcript available for %s", videoID)
			}

			if outputPath != "" {
				target, pathErr := expandOutputPath(outputPath)
				if pathErr != nil {
					return pathErr
				}
				if writeErr := os.WriteFile(target, []byte(result.Text+"\n"), 0o644); writeErr != nil {
					return fmt.Errorf("write transcript: %w", writeErr)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote transcript (%s) to %s\n", result.Source, target)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&languages, "languages", "l", nil, "Preferred caption languages, in order (e.g. en,de)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Whisper model for the speech-to-text fallback")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the transcript to a file instead of stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the transcript cache for this run")

	return cmd
}
