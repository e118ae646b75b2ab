// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Player backend and playback defaults.
const (
	Player               = "player.default"
	PlayerAutoplay       = "player.autoplay"
	PlayerQuality        = "player.quality"
	PlayerPreferAdaptive = "player.prefer_adaptive"
	PlayerSeekStep       = "player.seek_step"
	PlayerVolumeStep     = "player.volume_step"
)

// Automatic retry of recoverable playback faults.
const (
	RetryAuto        = "retry.auto"
	RetryMaxAttempts = "retry.max_attempts"
	RetryBaseDelay   = "retry.base_delay_ms"
)

// Resume position persistence.
const (
	ResumeEnable   = "resume.enable"
	ResumeInterval = "resume.interval"
)

// Connectivity monitoring.
const (
	NetworkProbeURL      = "network.probe_url"
	NetworkProbeInterval = "network.probe_interval"
)

// Session analytics.
const (
	AnalyticsEnable   = "analytics.enable"
	AnalyticsEndpoint = "analytics.endpoint"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Iconography.
const (
	IconsVariant = "icons.variant"
)
