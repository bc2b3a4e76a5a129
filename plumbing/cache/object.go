package cache

import (
	"github.com/sirupsen/logrus"

	"github.com/vcscore/corevcs/plumbing"
)

// DefaultMaxObjectSize bounds the decoded-object cache the Object
// Store's lookup order checks first (spec.md §5 "per-process object
// cache"), matching the teacher's 96 MiB default.
const DefaultMaxObjectSize = 96 * MiByte

// Object caches decoded object bytes keyed by identity, the first step
// in the Object Store's read lookup order.
type Object struct {
	lru *lru[plumbing.ID, []byte]
}

// NewObjectLRU builds an Object cache budgeted to maxBytes total
// payload size.
func NewObjectLRU(maxBytes int64) *Object {
	return &Object{lru: newLRU[plumbing.ID, []byte](maxBytes, func(b []byte) int64 { return int64(len(b)) })}
}

func (c *Object) Put(id plumbing.ID, content []byte) { c.lru.Put(id, content) }

func (c *Object) Get(id plumbing.ID) ([]byte, bool) { return c.lru.Get(id) }

func (c *Object) Clear() { c.lru.Clear() }

func (c *Object) Len() int { return c.lru.Len() }

// SetEvictionLogger reports every object cache eviction to log, the
// diagnostic spec.md §7's NotSupported/fallback taxonomy asks the
// Object Store to surface when a too-small cache is thrashing.
func (c *Object) SetEvictionLogger(log *logrus.Entry) {
	c.lru.onEvict = func(id plumbing.ID, freed int64) {
		log.WithFields(logrus.Fields{"object": id, "freed_bytes": freed}).Debug("object cache eviction")
	}
}
