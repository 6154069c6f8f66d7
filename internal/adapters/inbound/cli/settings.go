package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "KRAFTLINT_"

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Settings are the run options of the check command.
type Settings struct {
	Config     string        `koanf:"config"`
	Format     string        `koanf:"format"`
	Jobs       int           `koanf:"jobs"`
	Timeout    time.Duration `koanf:"timeout"`
	Cache      bool          `koanf:"cache"`
	ClearCache bool          `koanf:"clear_cache"`
	Watch      bool          `koanf:"watch"`
}

// loadSettings layers defaults, KRAFTLINT_* environment variables and
// explicitly set flags, in increasing precedence.
func loadSettings(flags *pflag.FlagSet) (Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"config":      "",
		"format":      FormatText,
		"jobs":        0,
		"timeout":     time.Duration(0),
		"cache":       false,
		"clear_cache": false,
		"watch":       false,
	}, "."), nil); err != nil {
		return Settings{}, fmt.Errorf("loading defaults: %w", err)
	}

	// KRAFTLINT_JOBS -> jobs
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Settings{}, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Settings{}, fmt.Errorf("loading flags: %w", err)
		}
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return s, s.validate()
}

func (s Settings) validate() error {
	switch s.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q (valid: text, json)", s.Format)
	}
	if s.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0, got %d", s.Jobs)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", s.Timeout)
	}
	return nil
}
