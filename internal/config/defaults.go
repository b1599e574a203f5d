package config

import "github.com/spf13/viper"

// SetDefaults seeds every recognized key with the spec's documented
// default so a minimal or absent config file still produces a workable
// Config. Order mirrors the Config struct.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("weights.name", 0.50)
	v.SetDefault("weights.address", 0.15)
	v.SetDefault("weights.pincode", 0.20)
	v.SetDefault("weights.ner", 0.10)
	v.SetDefault("weights.prescore", 0.05)

	v.SetDefault("thresholds.accept", 0.85)
	v.SetDefault("thresholds.ultra_generic_address", 0.75)
	v.SetDefault("thresholds.pass4_phonetic", 0.70)
	v.SetDefault("thresholds.llm_review_below", 0.95)

	v.SetDefault("streams.priority_overrides", []StreamOverride{})

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.models", []string{})
	v.SetDefault("llm.endpoints", []string{})
	v.SetDefault("llm.consensus_required_approvals", 3)
	v.SetDefault("llm.timeout_soft_s", 30)
	v.SetDefault("llm.timeout_hard_s", 60)

	v.SetDefault("cache.paths", map[string]string{})

	v.SetDefault("normalization.abbreviation_file", "")
	v.SetDefault("normalization.stopwords_file", "")
	v.SetDefault("normalization.state_alias_file", "")
}
