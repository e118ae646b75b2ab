package cmd

import (
	"os"
	"strings"

	"github.com/lectern-player/lectern/color"
	"github.com/lectern-player/lectern/config"
	"github.com/lectern-player/lectern/constant"
	"github.com/lectern-player/lectern/style"
	"github.com/lectern-player/lectern/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.SetOut(os.Stdout)
	envCmd.Flags().BoolP("set-only", "s", false, "Only variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only variables that are unset")
	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envNames lists every variable lectern reads, sorted.
func envNames() []string {
	prefix := strings.ToUpper(constant.Lectern) + "_"
	names := lo.Map(config.EnvExposed, func(k string, _ int) string {
		return prefix + strings.ToUpper(config.EnvKeyReplacer.Replace(k))
	})
	names = append(names, where.EnvConfigPath)
	slices.Sort(names)
	return names
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables lectern reads",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))
		name := style.New().Bold(true).Foreground(color.Purple).Render

		for _, env := range envNames() {
			value, present := os.LookupEnv(env)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			shown := style.Fg(color.Red)("unset")
			if present {
				shown = style.Fg(color.Green)(value)
			}
			cmd.Printf("%s=%s\n", name(env), shown)
		}
	},
}
