// Package config loads hogql's project configuration: catalog DSN,
// default team id, view-depth limit, cohort-membership mode, and
// dialect. Grounded on the teacher's internal/config/loader.go koanf
// pattern (file.Provider+yaml.Parser layered under env.Provider; where
// the teacher's LoadFromDir returns nil, nil when no config file is
// found, this one returns the defaults), with
// the teacher's env/flag precedence layering additionally wired in
// (internal/cli/config/loader.go's file -> env -> flags order) since
// hogql's CLI needs flag overrides too.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName and ConfigFileNameAlt are the two file names searched
// for in a project directory, matching the teacher's leapsql.yaml/.yml
// pair.
const (
	ConfigFileName    = "hogql.yaml"
	ConfigFileNameAlt = "hogql.yml"
)

// DialectName selects the resolver dialect a project defaults to.
type DialectName string

const (
	DialectStrict     DialectName = "strict"
	DialectClickhouse DialectName = "clickhouse"
	DialectHogQLX     DialectName = "hogqlx"
)

// CohortModeName mirrors resolve.CohortMode as a config string.
type CohortModeName string

const (
	CohortViaSubquery CohortModeName = "subquery"
	CohortViaLeftJoin CohortModeName = "leftjoin"
)

// Config is hogql's project configuration, the unmarshal target for
// hogql.yaml / HOGQL_* env vars / CLI flags.
type Config struct {
	CatalogDSN   string         `koanf:"catalog_dsn"`
	TeamID       string         `koanf:"team_id"`
	MaxViewDepth int            `koanf:"max_view_depth"`
	InCohortVia  CohortModeName `koanf:"in_cohort_via"`
	Dialect      DialectName    `koanf:"dialect"`
	Verbose      bool           `koanf:"verbose"`

	// ProjectRoot is not read from config; it's set by LoadFromDir to the
	// directory the config file was found in (or the cwd, if none was).
	ProjectRoot string `koanf:"-"`
}

// defaults returns the configuration a fresh project starts from absent
// any hogql.yaml, env var, or flag override.
func defaults() map[string]any {
	return map[string]any{
		"team_id":        "default",
		"max_view_depth": 3,
		"in_cohort_via":  string(CohortViaSubquery),
		"dialect":        string(DialectStrict),
		"verbose":        false,
	}
}

// findConfigFile returns the path to hogql.yaml or hogql.yml under dir,
// or "" if neither exists - the teacher's findConfigFile, unchanged in
// shape.
func findConfigFile(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// FindProjectRoot walks up from startDir looking for a directory
// containing hogql.yaml/.yml, matching the teacher's upward search
// (internal/cli/config/loader.go's findProjectRootUpward, capped the
// same defensive way to avoid an unbounded walk on a detached
// filesystem root).
func FindProjectRoot(startDir string) string {
	dir := startDir
	for i := 0; i < 10; i++ {
		if findConfigFile(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
	return ""
}

// LoadFromDir loads a Config from dir, applying defaults, then
// hogql.yaml/.yml if present, then HOGQL_-prefixed environment
// variables. Returns a defaulted Config (never nil) even when no config
// file is found, since a missing project file is not an error condition
// for a project that only ever uses env vars and flags.
func LoadFromDir(dir string) (*Config, error) {
	return Load(dir, nil)
}

// Load loads a Config the same way LoadFromDir does, additionally
// layering CLI flag overrides (posflag.Provider) on top - highest
// precedence, matching the teacher's "flags > env vars > config file >
// defaults" order (internal/cli/config/loader.go).
func Load(dir string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, err
	}

	configPath := findConfigFile(dir)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("HOGQL_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "HOGQL_"))
	}), nil); err != nil {
		return nil, err
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	cfg.ProjectRoot = dir

	return &cfg, nil
}
