package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/lectern-player/lectern/analytics"
	"github.com/lectern-player/lectern/auth"
	"github.com/lectern-player/lectern/color"
	"github.com/lectern-player/lectern/history"
	"github.com/lectern-player/lectern/icon"
	"github.com/lectern-player/lectern/key"
	"github.com/lectern-player/lectern/style"
	"github.com/lectern-player/lectern/util"
	"github.com/lectern-player/lectern/where"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

func init() {
	rootCmd.AddCommand(analyticsCmd)
	analyticsCmd.AddCommand(analyticsPendingCmd, analyticsSyncCmd, analyticsTokenCmd)
	analyticsTokenCmd.AddCommand(analyticsTokenSetCmd, analyticsTokenDeleteCmd)

	analyticsPendingCmd.SetOut(os.Stdout)
}

// analyticsCmd groups the session analytics commands.
var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Inspect and upload queued session analytics",
}

var analyticsPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List the session snapshots waiting to be uploaded",
	Run: func(cmd *cobra.Command, args []string) {
		pending, err := analytics.NewQueue(where.Analytics()).Pending()
		handleErr(err)

		if len(pending) == 0 {
			cmd.Println(style.Faint("nothing queued"))
			return
		}

		for _, s := range pending {
			cmd.Printf(
				"%s  watched %s  completed %.0f%%  buffering %d  quality changes %d  errors %d\n",
				style.Fg(color.Purple)(s.VideoID),
				history.FormatSeconds(float64(s.WatchTimeSeconds)),
				s.CompletionRatePercent,
				s.BufferingEvents,
				s.QualityChanges,
				s.ErrorCount,
			)
		}
	},
}

var analyticsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload queued snapshots to the configured endpoint",
	Run: func(cmd *cobra.Command, args []string) {
		endpoint := viper.GetString(key.AnalyticsEndpoint)
		if endpoint == "" {
			handleErr(fmt.Errorf("%s is not set", key.AnalyticsEndpoint))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		erase := util.PrintErasable(fmt.Sprintf("%s Uploading analytics...", icon.Get(icon.Progress)))
		sent, err := SyncAnalytics(ctx)
		erase()
		handleErr(err)

		fmt.Printf("%s uploaded %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), util.Quantify(sent, "snapshot", "snapshots"))
	},
}

// SyncAnalytics uploads the queued snapshots when an endpoint is configured.
func SyncAnalytics(ctx context.Context) (int, error) {
	endpoint := viper.GetString(key.AnalyticsEndpoint)
	if endpoint == "" {
		return 0, nil
	}

	token, err := auth.GetToken()
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return 0, err
	}

	return analytics.Reconcile(ctx, analytics.NewQueue(where.Analytics()), endpoint, token)
}

var analyticsTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the bearer token sent with analytics uploads",
}

var analyticsTokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the token in the system keyring",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			handleErr(survey.AskOne(&survey.Password{Message: "Token"}, &token, survey.WithValidator(survey.Required)))
		}

		handleErr(auth.SetToken(token))
		fmt.Printf("%s token saved\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

var analyticsTokenDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the token from the system keyring",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		err := auth.DeleteToken()
		if errors.Is(err, keyring.ErrNotFound) {
			err = nil
		}
		handleErr(err)
		fmt.Printf("%s token deleted\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

