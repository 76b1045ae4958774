package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			DomainsDir:     "~/.concierge/domains",
			LogLevel:       "info",
			MaxIterations:  10,
			InvokeTimeoutS: 30,
		},
		Engine: EngineConfig{
			APIBase:     "http://localhost:11434/v1",
			Model:       "llama3.1:8b",
			MaxTokens:   1024,
			Temperature: 0.2,
			TimeoutS:    120,
		},
		Checkpoints: CheckpointsConfig{
			DBPath:              "~/.concierge/checkpoints.db",
			TTLHours:            24,
			SweepIntervalMin:    10,
			RetainResolvedHours: 24,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Router: RouterConfig{
			Strategy: "hybrid",
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
	}
}
