package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/lectern-player/lectern/color"
	"github.com/lectern-player/lectern/constant"
	"github.com/lectern-player/lectern/style"
	"github.com/lectern-player/lectern/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Only print the version")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build info",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}
		defer version.Notify()

		rows := []lo.Tuple2[string, string]{
			lo.T2("Version", constant.Version),
			lo.T2("Commit", constant.Revision),
			lo.T2("Built at", strings.TrimSpace(constant.BuiltAt)),
			lo.T2("Built by", constant.BuiltBy),
			lo.T2("Platform", runtime.GOOS+"/"+runtime.GOARCH),
		}

		cmd.Printf("%s %s\n\n", style.Fg(color.Purple)("▇▇▇"), style.Bold(constant.Lectern))
		for _, row := range rows {
			cmd.Printf("  %s %s\n", style.Faint(fmt.Sprintf("%-12s", row.A)), style.Bold(row.B))
		}
	},
}
