package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/lectern-player/lectern/analytics"
	"github.com/lectern-player/lectern/icon"
	"github.com/lectern-player/lectern/util"
	"github.com/lectern-player/lectern/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget is a file or directory the clear command can remove.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	clear    func() error
}

var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), func() error { return util.Delete(where.Cache()) }},
	{"resume positions", "positions", mo.Some("p"), func() error { return util.Delete(where.Positions()) }},
	{"analytics queue", "analytics", mo.Some("a"), func() error { return analytics.NewQueue(where.Analytics()).Clear() }},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

// clearCmd removes cached and persisted state.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the cache, resume positions or queued analytics",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}

			anyCleared = true
			e := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			err := target.clear()
			e()
			if err != nil && !isNotExist(err) {
				handleErr(err)
			}
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.name))
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
