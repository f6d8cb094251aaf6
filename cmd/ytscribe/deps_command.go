package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytscribe/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external binaries the fallback path needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			missingRequired := 0
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if !status.Optional {
						missingRequired++
					}
				}
				note := status.Detail
				if note == "" {
					note = status.Description
				}
				rows = append(rows, []string{
					status.Name,
					status.Command,
					state,
					yesNo(status.Optional),
					note,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Command", "Status", "Optional", "Notes"},
				rows,
			))

			if missingRequired > 0 {
				return fmt.Errorf("%d required binaries missing; the audio fallback will not work", missingRequired)
			}
			return nil
		},
	}
}
