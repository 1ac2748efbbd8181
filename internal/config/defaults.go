package config

const (
	defaultConfigPath       = "~/.config/mpegsort/config.toml"
	projectConfigName       = "mpegsort.toml"
	defaultJournalPath      = "~/.local/share/mpegsort/journal.db"
	defaultProgressInterval = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Sort: Sort{
			ProgressInterval: defaultProgressInterval,
		},
		Journal: Journal{
			Enabled: true,
			Path:    defaultJournalPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
