// Package config reads the narrow slice of a repository's <gitdir>/config
// file the core needs directly: a few [core] keys and the [gc] reflog
// expiry. It also carries the non-gitconfig knobs (delta depth, cache
// sizes, hidden-ref prefixes) that a caller sets on the returned Config.
// Everything else in a gitconfig file — remotes, branches, user identity —
// is the out-of-scope porcelain config parser's job (spec.md §1's explicit
// Non-goal); this package only ever reads the core.* and gc.* sections.
package config

import (
	"io"
	"time"

	"dario.cat/mergo"
	"github.com/go-git/gcfg"
)

// Core holds the subset of `[core]` this module consumes.
type Core struct {
	// RepositoryFormatVersion gates on-disk format compatibility; this
	// module only understands version 0.
	RepositoryFormatVersion int `gcfg:"repositoryformatversion"`
	// BigFileThreshold is core.bigFileThreshold, in bytes. It is parsed
	// but no component of this module reads it.
	BigFileThreshold int64 `gcfg:"bigfilethreshold"`
	// LogAllRefUpdates is core.logAllRefUpdates. It is parsed but no
	// component of this module reads it.
	LogAllRefUpdates bool `gcfg:"logallrefupdates"`
}

// GC holds the `[gc]` knobs this module consumes.
type GC struct {
	// ReflogExpire bounds how far back reflog_for_each_reverse entries
	// are kept before a pack-refs / gc pass may prune them.
	ReflogExpire time.Duration `gcfg:"reflogexpire"`
}

// Config is the decoded, narrowed view of <gitdir>/config.
type Config struct {
	Core Core `gcfg:"core"`
	GC   GC   `gcfg:"gc"`

	// MaxDeltaDepth bounds delta chain length on read and write
	// (resolves SPEC_FULL.md's Open Question: a Repository-level
	// configurable rather than a compiled-in constant). Not part of
	// gitconfig proper; callers that want a non-default value set it
	// on the Config returned by Load or Default.
	MaxDeltaDepth int

	// ObjectCacheSize and DeltaBaseCacheSize size the plumbing/cache
	// LRUs (in bytes). Also not a gitconfig key; exposed here so a
	// caller configures everything through one struct.
	ObjectCacheSize    int64
	DeltaBaseCacheSize int64

	// HiddenRefPrefixes marks reference name prefixes invisible to
	// iteration callers that pass the hidden-aware flag (spec.md §4.3
	// "Hidden refs").
	HiddenRefPrefixes []string
}

// Default returns the configuration this module uses absent an
// on-disk override.
func Default() *Config {
	return &Config{
		MaxDeltaDepth:      50,
		ObjectCacheSize:    96 * 1 << 20,
		DeltaBaseCacheSize: 96 * 1 << 20,
		GC:                 GC{ReflogExpire: 90 * 24 * time.Hour},
	}
}

// Load parses r as a gitconfig-format file and merges recognized keys
// onto Default(). Unrecognized sections and keys are ignored rather
// than rejected, since a real <gitdir>/config carries many keys (user,
// remote, branch) this module does not read.
//
// Decoding happens into a zero-value Config rather than Default()
// directly, since gcfg only ever sets keys it finds in r, and a zero
// RepositoryFormatVersion/ReflogExpire read back from an empty `[gc]`
// section would otherwise silently clobber Default()'s non-zero
// baggage (MaxDeltaDepth, the cache sizes, the 90-day reflog expiry).
// mergo.Merge then overlays only the fields r actually set.
func Load(r io.Reader) (*Config, error) {
	var parsed Config
	if err := gcfg.ReadInto(&parsed, r); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := mergo.Merge(cfg, parsed, mergo.WithOverride); err != nil {
		return nil, err
	}
	return cfg, nil
}
