package config

// Config is the full configuration file.
//
// The file may be JSON or YAML; YAML is normalized to JSON before a strict
// decode, so unknown keys are rejected in both formats.
type Config struct {
	Source   SourceConfig   `json:"source"`
	Telegram TelegramConfig `json:"telegram"`
	State    StateConfig    `json:"state"`
	Logging  LoggingConfig  `json:"logging"`
	Schedule ScheduleConfig `json:"schedule"`
}

// SourceConfig configures the X API side.
type SourceConfig struct {
	// BearerToken may be left empty in the file and supplied via
	// XTF_BEARER_TOKEN instead.
	BearerToken    string `json:"bearer_token,omitempty"`
	Handle         string `json:"handle"`
	IncludeReposts bool   `json:"include_reposts"`
	IncludeReplies bool   `json:"include_replies"`
	// MaxPerRun caps posts forwarded per run. Default 50, floor 1.
	MaxPerRun int `json:"max_per_run,omitempty"`
}

// TelegramConfig configures the delivery side.
type TelegramConfig struct {
	// Token may be left empty in the file and supplied via XTF_BOT_TOKEN.
	Token string `json:"token,omitempty"`
	// ChatID is the destination channel: "@channelname" or a numeric id
	// like "-1001234567890".
	ChatID              string `json:"chat_id"`
	SuppressLinkPreview bool   `json:"suppress_link_preview"`
}

// StateConfig configures cursor persistence.
//
// Driver values:
//   - "file": JSON file, written atomically (default)
//   - "sqlite": SQLite database file (build with -tags sqlite)
type StateConfig struct {
	Driver string `json:"driver,omitempty"`
	Path   string `json:"path,omitempty"`
	// BusyTimeout is a Go duration string (sqlite only).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// ScheduleConfig controls loop mode. Spec accepts a cron expression
// ("*/15 * * * *", "@hourly"), a Go duration ("15m"), or HH:MM ("02:30").
type ScheduleConfig struct {
	Spec     string `json:"spec,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}
