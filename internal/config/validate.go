package config

import "github.com/sbvh/collegematch/internal/matcherr"

// Validate checks value ranges Viper's schema can't express on its own.
func (c *Config) Validate() error {
	sum := c.Weights.Name + c.Weights.Address + c.Weights.Pincode + c.Weights.NER + c.Weights.Prescore
	if sum <= 0 {
		return matcherr.Newf("weights must sum to a positive value, got %.2f", sum)
	}

	if c.Thresholds.Accept <= 0 || c.Thresholds.Accept > 1 {
		return matcherr.Newf("thresholds.accept must be in (0,1], got %.2f", c.Thresholds.Accept)
	}
	if c.Thresholds.UltraGenericAddress < 0 || c.Thresholds.UltraGenericAddress > 1 {
		return matcherr.Newf("thresholds.ultra_generic_address must be in [0,1], got %.2f", c.Thresholds.UltraGenericAddress)
	}
	if c.Thresholds.Pass4Phonetic < 0 || c.Thresholds.Pass4Phonetic > 1 {
		return matcherr.Newf("thresholds.pass4_phonetic must be in [0,1], got %.2f", c.Thresholds.Pass4Phonetic)
	}

	if c.LLM.Enabled {
		if len(c.LLM.Models) == 0 {
			return matcherr.New("llm.enabled is true but llm.models is empty")
		}
		if c.LLM.ConsensusRequiredApprovals <= 0 {
			return matcherr.Newf("llm.consensus_required_approvals must be > 0, got %d", c.LLM.ConsensusRequiredApprovals)
		}
		if c.LLM.ConsensusRequiredApprovals > len(c.LLM.Models) {
			return matcherr.Newf("llm.consensus_required_approvals (%d) exceeds len(llm.models) (%d)",
				c.LLM.ConsensusRequiredApprovals, len(c.LLM.Models))
		}
		if len(c.LLM.Endpoints) != len(c.LLM.Models) {
			return matcherr.Newf("llm.endpoints (%d) must name one URL per llm.models entry (%d)",
				len(c.LLM.Endpoints), len(c.LLM.Models))
		}
		if c.LLM.TimeoutSoftS <= 0 {
			return matcherr.Newf("llm.timeout_soft_s must be > 0, got %d", c.LLM.TimeoutSoftS)
		}
		if c.LLM.TimeoutHardS < c.LLM.TimeoutSoftS {
			return matcherr.Newf("llm.timeout_hard_s (%d) must be >= llm.timeout_soft_s (%d)",
				c.LLM.TimeoutHardS, c.LLM.TimeoutSoftS)
		}
	}

	return nil
}
