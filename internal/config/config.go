// Package config loads the TOML configuration file the CLI reads its
// defaults from, the same way the rest of the module's ambient stack leans
// on github.com/BurntSushi/toml for structured text formats. The CLI uses
// the start symbol and cache settings; the grammar file and output settings
// are parsed but not read by the CLI.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the settings a canonlr invocation can source from a TOML
// file instead of command-line flags.
type Config struct {
	Grammar struct {
		File  string `toml:"file"`
		Start string `toml:"start"`
	} `toml:"grammar"`

	Cache struct {
		Enabled bool   `toml:"enabled"`
		File    string `toml:"file"`
	} `toml:"cache"`

	Output struct {
		Markdown string `toml:"markdown"`
		Pretty   bool   `toml:"pretty"`
	} `toml:"output"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	var c Config
	c.Grammar.Start = "start"
	c.Cache.File = "canonlr.table.cache"
	return c
}

// Load reads and parses a TOML config file at path, starting from Default
// so a partial file only overrides the fields it mentions.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
