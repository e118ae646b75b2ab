package cmd

import (
	"os"

	"github.com/lectern-player/lectern/color"
	"github.com/lectern-player/lectern/style"
	"github.com/lectern-player/lectern/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

type location struct {
	label string
	flag  string
	short mo.Option[string]
	path  func() string
}

// internal locations are reachable by flag but left out of the listing.
var (
	locations = []location{
		{"Config", "config", mo.Some("c"), where.Config},
		{"Resume positions", "positions", mo.Some("p"), where.Positions},
		{"Analytics queue", "analytics", mo.Some("a"), where.Analytics},
		{"Logs", "logs", mo.Some("l"), where.Logs},
	}
	internalLocations = []location{
		{"Cache", "cache", mo.None[string](), where.Cache},
		{"Temp", "temp", mo.None[string](), where.Temp},
	}
)

func init() {
	rootCmd.AddCommand(whereCmd)
	whereCmd.SetOut(os.Stdout)

	flags := whereCmd.Flags()
	for _, l := range locations {
		flags.BoolP(l.flag, l.short.OrEmpty(), false, l.label+" path")
	}
	for _, l := range internalLocations {
		flags.Bool(l.flag, false, l.label+" path")
		lo.Must0(flags.MarkHidden(l.flag))
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(append(locations, internalLocations...), func(l location, _ int) string {
		return l.flag
	})...)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where positions, analytics, logs and config are kept",
	Run: func(cmd *cobra.Command, args []string) {
		selected, ok := lo.Find(append(locations, internalLocations...), func(l location) bool {
			return lo.Must(cmd.Flags().GetBool(l.flag))
		})
		if ok {
			cmd.Println(selected.path())
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		for i, l := range locations {
			if i > 0 {
				cmd.Println()
			}
			cmd.Printf("%s %s\n%s\n", header(l.label), style.Faint("--"+l.flag), l.path())
		}
	},
}
