// Package config loads the engine's RuntimeConfig once at startup
// (SPEC_FULL.md §3/§6), the same "read once, hand out an immutable
// record" shape as the teacher's services/config, but over a local
// JSON file instead of an embedded per-device blob published onto the
// bus: there is exactly one reader (the engine itself, before its
// dispatch loop starts), so no bus round-trip is needed.
package config

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/sailfish-community/dsme-go/types"
	"github.com/sailfish-community/dsme-go/x/strx"
)

// EnvVar is the environment variable naming the config file path.
const EnvVar = "DSME_CONFIG"

// DefaultPath is used when EnvVar is unset.
const DefaultPath = "/etc/dsme/dsme.json"

// Load reads RuntimeConfig from the file at path (falls back to
// DefaultPath when path is empty). A missing file is not an error —
// DefaultRuntimeConfig is returned, matching SPEC_FULL.md §7's
// "transient system call failure -> documented default" rule; a
// present-but-malformed file is an error, since a config the operator
// clearly intended to supply but got wrong should fail loudly rather
// than silently fall back.
func Load(path string) (types.RuntimeConfig, error) {
	path = strx.Coalesce(path, DefaultPath)

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return types.DefaultRuntimeConfig(), nil
	}
	if err != nil {
		return types.RuntimeConfig{}, err
	}

	cfg := types.DefaultRuntimeConfig()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return types.RuntimeConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnv is Load(os.Getenv(EnvVar)).
func LoadFromEnv() (types.RuntimeConfig, error) {
	return Load(os.Getenv(EnvVar))
}
