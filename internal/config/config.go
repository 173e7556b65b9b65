// Package config loads runtime configuration for the agent runtime:
// provider credentials, search provider selection, workspace paths, and
// model defaults. Grounded on the teacher's internal/config/load.go and
// manager.go (viper-backed layered config: defaults, then config file,
// then environment), generalized to this module's single-process scope.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"skillmint/internal/permissions"
)

// RuntimeConfig is the fully-resolved configuration for one skillmintd
// process.
type RuntimeConfig struct {
	WorkDir       string        `mapstructure:"work_dir"`
	SkillsDir     string        `mapstructure:"skills_dir"`
	MemoryDir     string        `mapstructure:"memory_dir"`
	TranscriptDir string        `mapstructure:"transcript_dir"`

	LLMProvider   string `mapstructure:"llm_provider"`
	LLMModel      string `mapstructure:"llm_model"`
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`

	SearchProvider string `mapstructure:"search_provider"`
	SearchAPIKey   string `mapstructure:"search_api_key"`

	MaxIterations  int           `mapstructure:"max_iterations"`
	TokenLimit     int           `mapstructure:"token_limit"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	PermissionMode string `mapstructure:"permission_mode"`

	Debug bool `mapstructure:"debug"`
}

// Mode resolves the configured PermissionMode string into permissions.Mode,
// defaulting to ModeDefault on an unrecognized value.
func (c RuntimeConfig) Mode() permissions.Mode {
	switch strings.ToLower(c.PermissionMode) {
	case "accept_edits", "acceptedits":
		return permissions.ModeAcceptEdits
	case "unrestricted", "bypass":
		return permissions.ModeUnrestricted
	default:
		return permissions.ModeDefault
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("work_dir", ".")
	v.SetDefault("skills_dir", "./skills")
	v.SetDefault("memory_dir", "./memory")
	v.SetDefault("transcript_dir", "./transcripts")
	v.SetDefault("llm_provider", "anthropic")
	v.SetDefault("max_iterations", 10)
	v.SetDefault("token_limit", 180000)
	v.SetDefault("request_timeout", 60*time.Second)
	v.SetDefault("permission_mode", "default")
	v.SetDefault("search_provider", "duckduckgo")
}

// Load reads configuration from (in ascending priority) built-in
// defaults, a config file named skillmint.{yaml,json,toml} on the
// standard search path, and SKILLMINT_-prefixed environment variables.
// configPath, when non-empty, names the one config file to read in place
// of the search path.
func Load(configPath string) (RuntimeConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("skillmint")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/skillmint")
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix("SKILLMINT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return RuntimeConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg RuntimeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
