package config

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			MaxConcurrentTasks: 5,
			ContinueOnError:    false,
		},
		Retry: RetryConfig{
			Enabled:           false,
			InitialIntervalMS: 100,
			MaxIntervalMS:     10_000,
			MaxElapsedTimeMS:  120_000,
			Multiplier:        2.0,
		},
		Report: ReportConfig{
			Format: "text",
		},
		History: HistoryConfig{
			Enabled: false,
		},
	}
}
