package config

const (
	defaultDataDir               = "~/.local/share/speakertag"
	defaultDatabaseName          = "speakertag.db"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultReviewThreshold       = 0.70
	defaultMinUtterances         = 3
	defaultEliminationConfidence = 0.50
	defaultCountWeight           = 0.5
	defaultConfidenceWeight      = 0.5
	defaultConfigPath            = "~/.config/speakertag/config.toml"
	projectConfigName            = "speakertag.toml"
	envDatabasePath              = "SPEAKERTAG_DB"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Resolver: Resolver{
			ReviewThreshold:       defaultReviewThreshold,
			MinUtterances:         defaultMinUtterances,
			EliminationConfidence: defaultEliminationConfidence,
			CountWeight:           defaultCountWeight,
			ConfidenceWeight:      defaultConfidenceWeight,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
