package config

// SchedulerConfig controls plan execution.
type SchedulerConfig struct {
	MaxConcurrentTasks int  `json:"max_concurrent_tasks"` // Tasks in flight within a level
	ContinueOnError    bool `json:"continue_on_error"`    // Keep running later levels after a failure
}

// RetryConfig controls the optional resilience wrapper around the task
// executor. Durations are milliseconds in the file.
type RetryConfig struct {
	Enabled           bool    `json:"enabled"`
	InitialIntervalMS int     `json:"initial_interval_ms,omitempty"`
	MaxIntervalMS     int     `json:"max_interval_ms,omitempty"`
	MaxElapsedTimeMS  int     `json:"max_elapsed_time_ms,omitempty"`
	Multiplier        float64 `json:"multiplier,omitempty"`
}

// ReportConfig controls result rendering.
type ReportConfig struct {
	Format string `json:"format"` // "text", "markdown", or "json"
}

// HistoryConfig controls the run archive.
type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"db_path,omitempty"` // Defaults to ~/.planrun/history.db
}

// Config is the top-level configuration.
type Config struct {
	Scheduler SchedulerConfig `json:"scheduler"`
	Retry     RetryConfig     `json:"retry"`
	Report    ReportConfig    `json:"report"`
	History   HistoryConfig   `json:"history"`
}
