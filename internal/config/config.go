package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the defaults a user can set in config.toml; no environment
// variables are consulted. The CLI applies Threads (to create, when
// --threads is 0) and LogFile (when --log-file is not given). The other
// fields are loaded, shown by `config show` and written by `setup`, but no
// command uses them in place of its own flag defaults.
type Config struct {
	Threads     int    `toml:"threads"`
	Compression string `toml:"compression"`
	ZstdLevel   int    `toml:"zstd_level"`
	SplitGB     float64 `toml:"split_gb"`
	SplitFiles  int    `toml:"split_files"`
	Dedup       bool   `toml:"dedup"`
	Quiet       bool   `toml:"quiet"`
	JSON        bool   `toml:"json"`
	LogFile     string `toml:"log_file"`
}

// Default returns the built-in defaults used when no config file exists
// and no CLI flag overrides them.
func Default() Config {
	return Config{
		Threads:     4,
		Compression: "gzip",
		ZstdLevel:   3,
		SplitGB:     4,
		SplitFiles:  0,
		Dedup:       false,
	}
}

// Load reads config.toml from ConfigPath, returning Default() unchanged
// if the file does not exist.
func Load() (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to ConfigPath, creating ConfigDir if necessary.
func Save(cfg Config) error {
	if err := os.MkdirAll(ConfigDir(), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigPath(), data, 0o644)
}
