package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lectern-player/lectern/color"
	"github.com/lectern-player/lectern/history"
	"github.com/lectern-player/lectern/icon"
	"github.com/lectern-player/lectern/style"
	"github.com/lectern-player/lectern/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.SetOut(os.Stdout)

	historyCmd.AddCommand(historyRemoveCmd)
}

// historyCmd lists stored resume positions.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the stored resume positions, most recent first",
	Run: func(cmd *cobra.Command, args []string) {
		positions, err := history.Default().List()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			lo.Must0(json.NewEncoder(cmd.OutOrStdout()).Encode(positions))
			return
		}

		if len(positions) == 0 {
			cmd.Println(style.Faint("no resume positions"))
			return
		}

		width := util.Max(lo.Map(positions, func(p *history.WatchPosition, _ int) int {
			return len(p.VideoID)
		})...)

		for _, p := range positions {
			cmd.Printf(
				"%s  %s  %s\n",
				style.Fg(color.Purple)(fmt.Sprintf("%-*s", width, p.VideoID)),
				style.Bold(fmt.Sprintf("%8s", history.FormatSeconds(p.Position))),
				style.Faint(p.LastPersistedAt.Local().Format("2006-01-02 15:04")),
			)
		}
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:     "remove [video id]...",
	Short:   "Forget the resume position of the given videos",
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := history.Default()
		for _, id := range args {
			handleErr(store.Remove(id))
			fmt.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Purple)(id))
		}
	},
}
