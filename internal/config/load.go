package config

import (
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/sbvh/collegematch/internal/matcherr"
)

// Load reads configPath as YAML and decodes it into a Config, rejecting
// any key outside the recognized tree (§6: "Unknown keys are rejected at
// startup"). Defaults are applied for every key Load does not find.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, matcherr.Wrapf(err, "read config file %s", configPath)
	}

	var cfg Config
	decodeHook := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
	})
	if err := v.UnmarshalExact(&cfg, decodeHook); err != nil {
		return nil, matcherr.Wrapf(err, "decode config file %s (unknown key?)", configPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, matcherr.Wrapf(err, "validate config file %s", configPath)
	}

	return &cfg, nil
}
