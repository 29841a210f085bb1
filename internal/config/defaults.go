package config

const (
	defaultStagingDir       = "~/.local/share/sharpframes/staging"
	defaultLogDir           = "~/.local/share/sharpframes/logs"
	defaultHistoryDB        = "~/.local/share/sharpframes/history.db"
	defaultFPS              = 10
	defaultOutputFormat     = "jpg"
	defaultJPEGQuality      = 2
	defaultMaxWorkers       = 8
	defaultFailureThreshold = 0.5
	defaultMethod           = "best-n"
	defaultNumFrames        = 300
	defaultMinBuffer        = 3
	defaultBatchSize        = 5
	defaultBatchBuffer      = 2
	defaultWindowSize       = 15
	defaultSensitivity      = 50
	defaultRemoveRetries    = 5
	defaultRemoveBackoffMS  = 200
	defaultStaleMaxAgeHours = 24
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			HistoryDB:  defaultHistoryDB,
		},
		Extraction: Extraction{
			FPS:          defaultFPS,
			OutputFormat: defaultOutputFormat,
			JPEGQuality:  defaultJPEGQuality,
		},
		Scoring: Scoring{
			MaxWorkers:       defaultMaxWorkers,
			FailureThreshold: defaultFailureThreshold,
		},
		Selection: Selection{
			Method:      defaultMethod,
			NumFrames:   defaultNumFrames,
			MinBuffer:   defaultMinBuffer,
			BatchSize:   defaultBatchSize,
			BatchBuffer: defaultBatchBuffer,
			WindowSize:  defaultWindowSize,
			Sensitivity: defaultSensitivity,
		},
		Cleanup: Cleanup{
			RemoveRetries:    defaultRemoveRetries,
			RemoveBackoffMS:  defaultRemoveBackoffMS,
			StaleMaxAgeHours: defaultStaleMaxAgeHours,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
