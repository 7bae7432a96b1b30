package config

// Default returns the built-in configuration values applied before a config
// file is read.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: "~/.local/share/btvol",
			LogDir:   "~/.local/share/btvol/logs",
		},
		Audio: Audio{
			MaxVolume: 15,
			MinVolume: 0,
		},
		Monitor: Monitor{
			Enabled: true,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
