package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "collegematch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "weights:\n  name: 0.6\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.Weights.Name)
	assert.Equal(t, 0.15, cfg.Weights.Address)
	assert.Equal(t, 0.85, cfg.Thresholds.Accept)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeTempConfig(t, "weights:\n  name: 0.5\nbogus_section:\n  foo: 1\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadValidatesLLMModelsRequired(t *testing.T) {
	path := writeTempConfig(t, "llm:\n  enabled: true\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadAcceptsFullConfig(t *testing.T) {
	path := writeTempConfig(t, `
weights:
  name: 0.5
  address: 0.15
  pincode: 0.2
  ner: 0.1
  prescore: 0.05
thresholds:
  accept: 0.85
  ultra_generic_address: 0.75
  pass4_phonetic: 0.7
  llm_review_below: 0.95
streams:
  priority_overrides:
    - contains: ["AYUSH"]
      streams: ["MEDICAL"]
llm:
  enabled: true
  models: ["model-a", "model-b", "model-c"]
  endpoints: ["http://a:8080/v1/chat/completions", "http://b:8080/v1/chat/completions", "http://c:8080/v1/chat/completions"]
  consensus_required_approvals: 2
  timeout_soft_s: 30
  timeout_hard_s: 60
cache:
  paths:
    fts: /tmp/fts.bleve
normalization:
  abbreviation_file: /tmp/abbrev.txt
  stopwords_file: /tmp/stopwords.txt
  state_alias_file: /tmp/states.csv
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"model-a", "model-b", "model-c"}, cfg.LLM.Models)
	assert.Equal(t, "/tmp/fts.bleve", cfg.Cache.Paths["fts"])
	assert.Len(t, cfg.Streams.PriorityOverrides, 1)
}
