package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/lectern-player/lectern/analytics"
	"github.com/lectern-player/lectern/history"
	"github.com/lectern-player/lectern/key"
	"github.com/lectern-player/lectern/log"
	"github.com/lectern-player/lectern/media"
	"github.com/lectern-player/lectern/network"
	"github.com/lectern-player/lectern/playback"
	"github.com/lectern-player/lectern/player"
	"github.com/lectern-player/lectern/retry"
	"github.com/lectern-player/lectern/tui"
	"github.com/lectern-player/lectern/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func play(cmd *cobra.Command, target string) error {
	if backend := viper.GetString(key.Player); backend != "mpv" {
		return fmt.Errorf("unsupported player backend %q", backend)
	}

	l, err := loadLecture(cmd, target)
	if err != nil {
		return err
	}

	quality, err := chooseQuality(cmd, media.Qualities(l.Candidates))
	if err != nil {
		return err
	}

	initial := l.Initial
	if cmd.Flags().Changed("start") {
		initial = lo.Must(cmd.Flags().GetFloat64("start"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := network.Default()
	if probeURL := viper.GetString(key.NetworkProbeURL); probeURL != "" {
		interval := time.Duration(viper.GetInt(key.NetworkProbeInterval)) * time.Second
		go monitor.Watch(ctx, probeURL, interval)
	}

	loop := playback.NewLoop()
	defer loop.Close()

	bridge := tui.NewBridge()
	options := playback.Options{
		VideoID:         l.ID,
		InitialPosition: initial,
		Autoplay:        viper.GetBool(key.PlayerAutoplay),
		Quality:         quality,
		PreferAdaptive:  viper.GetBool(key.PlayerPreferAdaptive),
		Retry: retry.Config{
			MaxAttempts: viper.GetInt(key.RetryMaxAttempts),
			BaseDelay:   time.Duration(viper.GetInt(key.RetryBaseDelay)) * time.Millisecond,
			AutoRetry:   viper.GetBool(key.RetryAuto),
		},
		PersistInterval: time.Duration(viper.GetInt(key.ResumeInterval)) * time.Second,
		Monitor:         monitor,
		Probe:           network.ProbeFault,
		Executor:        loop,
		Scheduler:       playback.TimeScheduler{},
		Callbacks:       bridge.Callbacks(),
	}

	if viper.GetBool(key.ResumeEnable) && !lo.Must(cmd.Flags().GetBool("no-resume")) {
		options.Store = history.Default()
	}
	if viper.GetBool(key.AnalyticsEnable) {
		options.Sink = analytics.NewQueue(where.Analytics())
	}

	log.WithFields(log.Fields{
		"video_id":   l.ID,
		"quality":    quality,
		"candidates": len(l.Candidates),
	}).Info("opening lecture")

	ctrl := playback.New(player.NewMPV(l.Title), options)
	defer ctrl.Dispose()

	if err := ctrl.Open(l.Candidates); err != nil {
		return err
	}

	return tui.Run(ctrl, bridge, &tui.Options{
		Title:      l.Title,
		Qualities:  media.Qualities(l.Candidates),
		SeekStep:   float64(viper.GetInt(key.PlayerSeekStep)),
		VolumeStep: float64(viper.GetInt(key.PlayerVolumeStep)) / 100,
	})
}

// chooseQuality prompts when --pick-quality is set, otherwise normalises the configured quality.
func chooseQuality(cmd *cobra.Command, available []string) (string, error) {
	if lo.Must(cmd.Flags().GetBool("pick-quality")) && len(available) > 1 {
		var choice string
		err := survey.AskOne(&survey.Select{
			Message: "Choose quality",
			Options: available,
		}, &choice)
		return choice, err
	}

	wanted := viper.GetString(key.PlayerQuality)
	if wanted == "" || wanted == media.QualityAuto {
		return media.QualityAuto, nil
	}

	if match, ok := media.MatchQuality(wanted, available).Get(); ok {
		return match, nil
	}

	log.Warnf("quality %s is not available, falling back", wanted)
	return wanted, nil
}
