package cmd

import (
	"encoding/json"
	"os"

	"github.com/lectern-player/lectern/color"
	"github.com/lectern-player/lectern/icon"
	"github.com/lectern-player/lectern/key"
	"github.com/lectern-player/lectern/media"
	"github.com/lectern-player/lectern/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)

	sourcesCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	sourcesCmd.Flags().StringP("quality", "q", "", "Quality to resolve against. Defaults to the configured quality")
	addLectureFlags(sourcesCmd)

	sourcesCmd.SetOut(os.Stdout)
}

// sourcesCmd prints the candidate encodings of a lecture and the one that would play.
var sourcesCmd = &cobra.Command{
	Use:   "sources [manifest.json | url]",
	Short: "List the encodings of a lecture and mark the one that would be played",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, err := loadLecture(cmd, args[0])
		handleErr(err)

		quality := lo.Must(cmd.Flags().GetString("quality"))
		if quality == "" {
			quality = viper.GetString(key.PlayerQuality)
		}
		if match, ok := media.MatchQuality(quality, media.Qualities(l.Candidates)).Get(); ok {
			quality = match
		}

		active, err := media.Resolve(l.Candidates, quality, media.Capabilities{
			Adaptive: viper.GetBool(key.PlayerPreferAdaptive),
		})
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			lo.Must0(encoder.Encode(struct {
				VideoID    string         `json:"video_id"`
				Active     media.Source   `json:"active"`
				Candidates []media.Source `json:"candidates"`
			}{l.ID, active, l.Candidates}))
			return
		}

		cmd.Println(style.New().Foreground(color.HiBlue).Bold(true).Render(l.ID))
		for _, s := range l.Candidates {
			mark := " "
			if s == active {
				mark = style.Fg(color.Green)(icon.Get(icon.Play))
			}
			cmd.Printf("%s %-9s %-10s %s\n", mark, style.Fg(color.Cyan)(s.Quality), style.Faint(s.Kind.String()), s.URL)
		}
	},
}
