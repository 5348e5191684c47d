package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFromDirDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	require.Equal(t, "default", cfg.TeamID)
	require.Equal(t, 3, cfg.MaxViewDepth)
	require.Equal(t, DialectStrict, cfg.Dialect)
}

func TestLoadFromDirReadsYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(
		"team_id: acme\nmax_view_depth: 5\ndialect: clickhouse\n",
	), 0o644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	require.Equal(t, "acme", cfg.TeamID)
	require.Equal(t, 5, cfg.MaxViewDepth)
	require.Equal(t, DialectClickhouse, cfg.Dialect)
}

func TestLoadFromDirEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("team_id: acme\n"), 0o644))
	t.Setenv("HOGQL_TEAM_ID", "env-team")

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	require.Equal(t, "env-team", cfg.TeamID)
}

func TestFindProjectRootWalksUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("team_id: acme\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found := FindProjectRoot(nested)
	require.Equal(t, root, found)
}

func TestFindProjectRootReturnsEmptyWhenNotFound(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, "", FindProjectRoot(dir))
}
