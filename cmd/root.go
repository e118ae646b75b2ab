// Package cmd implements the command-line interface of lectern.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/lectern-player/lectern/color"
	"github.com/lectern-player/lectern/constant"
	"github.com/lectern-player/lectern/icon"
	"github.com/lectern-player/lectern/key"
	"github.com/lectern-player/lectern/log"
	"github.com/lectern-player/lectern/style"
	"github.com/lectern-player/lectern/util"
	"github.com/lectern-player/lectern/version"
	"github.com/lectern-player/lectern/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.Flags().StringP("quality", "q", "", "Preferred quality, e.g. 720p. Close matches such as 720 are accepted")
	lo.Must0(viper.BindPFlag(key.PlayerQuality, rootCmd.Flags().Lookup("quality")))

	rootCmd.Flags().BoolP("pick-quality", "p", false, "Choose the quality interactively before playing")
	rootCmd.Flags().Float64P("start", "s", 0, "Start position in seconds. Overrides the stored resume position")
	rootCmd.Flags().Bool("no-resume", false, "Neither read nor write the resume position")
	addLectureFlags(rootCmd)

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// stale IPC sockets of earlier sessions
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd plays a lecture.
var rootCmd = &cobra.Command{
	Use:   constant.Lectern + " [manifest.json | url]",
	Short: "Resilient terminal player for lecture videos",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiCyan).Render("    - Resilient terminal player for lecture videos"),
	Example: strings.Join([]string{
		"  lectern lecture.json",
		"  lectern --quality 720p https://cdn.example.com/lectures/intro.m3u8",
		"  lectern --cloudinary https://res.cloudinary.com/demo/video/upload/v1/intro.mp4",
	}, "\n"),
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if len(args) == 0 {
			handleErr(cmd.Help())
			return
		}

		CheckDependencies()
		handleErr(play(cmd, args[0]))
	},
}

// Execute runs the root command.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
