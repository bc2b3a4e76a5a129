package cache

import "github.com/sirupsen/logrus"

// DefaultMaxDeltaBaseSize bounds the resolved-delta-base cache
// (spec.md §4.2 "cap a small LRU of recently-resolved delta bases to
// bound memory"), keyed by pack-relative byte offset since a delta
// base is identified by its position in one open pack, not by an
// object identity that may not be known until it is itself resolved.
const DefaultMaxDeltaBaseSize = 96 * MiByte

// DeltaBase caches fully-resolved delta base content during a single
// pack's chain resolution.
type DeltaBase struct {
	lru *lru[int64, []byte]
}

// NewDeltaBaseLRU builds a DeltaBase cache budgeted to maxBytes.
func NewDeltaBaseLRU(maxBytes int64) *DeltaBase {
	return &DeltaBase{lru: newLRU[int64, []byte](maxBytes, func(b []byte) int64 { return int64(len(b)) })}
}

func (c *DeltaBase) Put(offset int64, content []byte) { c.lru.Put(offset, content) }

func (c *DeltaBase) Get(offset int64) ([]byte, bool) { return c.lru.Get(offset) }

func (c *DeltaBase) Clear() { c.lru.Clear() }

// SetEvictionLogger reports every delta-base cache eviction to log.
func (c *DeltaBase) SetEvictionLogger(log *logrus.Entry) {
	c.lru.onEvict = func(offset int64, freed int64) {
		log.WithFields(logrus.Fields{"offset": offset, "freed_bytes": freed}).Debug("delta base cache eviction")
	}
}
