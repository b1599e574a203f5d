package appctx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "collegematch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weights:\n  name: 0.5\n"), 0644))
	return path
}

func TestNewWiresEveryDependencyAgainstEmptyCatalogue(t *testing.T) {
	cfg := writeTempConfig(t)
	ctx, err := New(Options{ConfigPath: cfg, DBPath: ":memory:"}, nil)
	require.NoError(t, err)
	defer ctx.Close()

	require.NotNil(t, ctx.Index)
	require.NotNil(t, ctx.Orchestrator)
	require.NotNil(t, ctx.Verify)

	stats, err := ctx.Orchestrator.Run(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 0, stats.Committed)
}

func TestNewRejectsLLMEnabledWithoutModels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "collegematch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  enabled: true\n"), 0644))

	_, err := New(Options{ConfigPath: path, DBPath: ":memory:"}, nil)
	require.Error(t, err)
}
