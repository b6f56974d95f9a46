package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultConfigPath is read when --config is not given and the file exists.
const DefaultConfigPath = "linkgraph.toml"

// Config is the optional linkgraph.toml file. Command-line flags override
// every value.
//
//	concurrency = 8
//	database = "runs.db"
//	format = "json"
//	exclude_external = true
type Config struct {
	// Concurrency bounds parallel target resolution. Zero means GOMAXPROCS.
	Concurrency int `toml:"concurrency"`
	// Database is the run store used by resolve when --store is absent.
	Database string `toml:"database"`
	// Format is the default output format.
	Format string `toml:"format"`
	// ExcludeExternal skips external targets when resolve has no --target.
	ExcludeExternal bool `toml:"exclude_external"`
}

// LoadConfig reads a TOML config. A missing file is an error only when
// required is set. Unknown keys are rejected.
func LoadConfig(path string, required bool) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, fmt.Errorf("config %q: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Concurrency < 0 {
		return cfg, fmt.Errorf("config %q: concurrency must not be negative", path)
	}
	if cfg.Format != "" && !isValidFormat(cfg.Format) {
		return cfg, fmt.Errorf("config %q: invalid format %q: must be one of %v", path, cfg.Format, ValidFormats)
	}
	return cfg, nil
}
