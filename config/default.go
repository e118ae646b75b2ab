package config

import "github.com/lectern-player/lectern/key"

// Default maps every known key to its field.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.Player, "mpv", "Native media backend used for playback")
	register(key.PlayerAutoplay, true, "Start playback as soon as the source is ready.\nA blocked autoplay leaves the player paused")
	register(key.PlayerQuality, "auto", "Preferred quality label, e.g. 720p.\n\"auto\" prefers the adaptive stream")
	register(key.PlayerPreferAdaptive, true, "Prefer the adaptive (HLS) stream when the backend supports it")
	register(key.PlayerSeekStep, 10, "Seconds skipped by the left/right arrow keys")
	register(key.PlayerVolumeStep, 10, "Volume percentage changed by the up/down arrow keys")
	register(key.RetryAuto, true, "Automatically retry recoverable playback faults")
	register(key.RetryMaxAttempts, 3, "Maximum automatic retry attempts before giving up")
	register(key.RetryBaseDelay, 1000, "Base retry delay in milliseconds.\nAttempt n waits n times this value")
	register(key.ResumeEnable, true, "Resume videos from the last persisted position")
	register(key.ResumeInterval, 5, "Seconds of playback between resume position writes")
	register(key.NetworkProbeURL, "", "URL probed to detect connectivity.\nEmpty disables active probing")
	register(key.NetworkProbeInterval, 15, "Seconds between connectivity probes")
	register(key.AnalyticsEnable, true, "Record session analytics")
	register(key.AnalyticsEndpoint, "", "HTTP endpoint receiving queued analytics snapshots.\nEmpty keeps them local")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, false, "Check for new releases when printing help")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
}
