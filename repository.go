// Package corevcs ties the Hash & Codec, Object Store, Reference
// Store, Revision Walker, Bitmap Index, Blame Engine, Transaction
// Layer, and Config layers together into the one value a caller
// actually opens: a Repository. Grounded on the design notes' "the
// only truly process-global state is the logger" guidance, reworked
// here (per SPEC_FULL.md §4.10) into state scoped to one Repository
// rather than a package-level global, so a process can open more than
// one repository without their caches or loggers bleeding into each
// other.
package corevcs

import (
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/sirupsen/logrus"

	"github.com/vcscore/corevcs/config"
	"github.com/vcscore/corevcs/logging"
	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/cache"
	"github.com/vcscore/corevcs/plumbing/object"
	"github.com/vcscore/corevcs/plumbing/storer"
	"github.com/vcscore/corevcs/refupdate"
	"github.com/vcscore/corevcs/storage/filesystem"
	"github.com/vcscore/corevcs/storage/filesystem/dotgit"
)

// Repository is one open git directory: its Storer (Object Store plus
// Reference Store), the narrowed Config read from it, the object and
// delta-base caches sized from that config, and the per-component
// loggers every other package's diagnostics flow through.
type Repository struct {
	Storer storer.Storer
	Config *config.Config

	objectCache *cache.Object
	deltaBase   *cache.DeltaBase
	log         *logging.Fields

	hiddenPrefixes []string

	dir *dotgit.DotGit // nil for a Storer that isn't filesystem-backed
}

// Open opens the git directory rooted at fs, reading its config (if
// present) to size the caches and populate hidden-ref prefixes.
func Open(fs billy.Filesystem) (*Repository, error) {
	dir := dotgit.New(fs)
	fsStorage := filesystem.NewStorage(fs)

	cfg := config.Default()
	if f, err := fs.Open("config"); err == nil {
		parsed, parseErr := config.Load(f)
		f.Close()
		if parseErr != nil {
			return nil, parseErr
		}
		cfg = parsed
	}

	fsStorage.SetMaxDeltaDepth(cfg.MaxDeltaDepth)

	r := &Repository{
		Storer:         fsStorage,
		Config:         cfg,
		objectCache:    cache.NewObjectLRU(cfg.ObjectCacheSize),
		deltaBase:      cache.NewDeltaBaseLRU(cfg.DeltaBaseCacheSize),
		log:            logging.New(nil),
		hiddenPrefixes: cfg.HiddenRefPrefixes,
		dir:            dir,
	}
	r.objectCache.SetEvictionLogger(r.log.Entry(logging.Object))
	r.deltaBase.SetEvictionLogger(r.log.Entry(logging.Object))
	return r, nil
}

// Init creates the directory skeleton for a fresh repository at fs,
// then opens it.
func Init(fs billy.Filesystem) (*Repository, error) {
	dir := dotgit.New(fs)
	if err := dir.Init(); err != nil {
		return nil, err
	}
	return Open(fs)
}

// SetLogger replaces the base logrus.Logger every component logger
// writes through.
func (r *Repository) SetLogger(base *logrus.Logger) {
	r.log = logging.New(base)
	r.objectCache.SetEvictionLogger(r.log.Entry(logging.Object))
	r.deltaBase.SetEvictionLogger(r.log.Entry(logging.Object))
}

// Log returns the component logger for c.
func (r *Repository) Log(c logging.Component) *logrus.Entry { return r.log.Entry(c) }

// NewTransaction starts a Transaction Layer batch over this
// repository's Reference Store, pre-wired with this Repository's
// logger so lock-contention retries are reported.
func (r *Repository) NewTransaction() *refupdate.Transaction {
	t := refupdate.New(r.dir)
	t.SetLogger(r.log)
	return t
}

// IsHidden reports whether name falls under one of the configured
// hidden-ref prefixes (spec.md §4.3's "Hidden refs"): invisible to
// iteration callers that respect it, but never to direct Reference
// lookups, which always see the literal value stored.
func (r *Repository) IsHidden(name plumbing.ReferenceName) bool {
	s := string(name)
	for _, p := range r.hiddenPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Peel resolves name (following symbolic indirection) and, if it
// names an annotated tag, dereferences the tag chain down to the
// first non-tag object — the composition spec.md §4.3 describes but
// that plumbing/storer cannot implement directly, since
// plumbing/object (needed to decode a tag) already imports
// plumbing/storer and a reverse import would cycle.
func (r *Repository) Peel(name plumbing.ReferenceName) (plumbing.ID, plumbing.ObjectType, error) {
	ref, err := storer.ResolveReference(r.Storer, name, storer.Reading)
	if err != nil {
		return plumbing.ZeroID, plumbing.InvalidObject, err
	}
	return object.Peel(r.Storer, ref.Hash())
}

// ForEachVisibleRef iterates every reference whose name is not hidden
// under this Repository's configured prefixes.
func (r *Repository) ForEachVisibleRef(fn func(*plumbing.Reference) error) error {
	iter, err := r.Storer.IterReferences()
	if err != nil {
		return err
	}
	defer iter.Close()

	return iter.ForEach(func(ref *plumbing.Reference) error {
		if r.IsHidden(ref.Name()) {
			return nil
		}
		return fn(ref)
	})
}
