// Package dotgit implements the on-disk layout of a git directory: loose
// and packed objects, loose and packed refs, reflogs, and the lock-file
// discipline the Transaction Layer (spec.md §4.4) builds its three-phase
// commit on top of. Grounded on the teacher's
// storage/filesystem/internal/dotgit package, adapted onto go-billy's
// billy.Filesystem abstraction exactly as the teacher does, so the same
// code serves an OS filesystem or an in-memory one under test.
package dotgit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/vcscore/corevcs/hash"
	"github.com/vcscore/corevcs/plumbing"
)

const (
	objectsPath = "objects"
	packPath    = "objects/pack"
	refsPath    = "refs"

	packedRefsPath = "packed-refs"
	logsPath       = "logs"

	tmpObjectPrefix = "tmp_obj_"
	tmpPackPrefix   = "tmp_pack_"
)

var (
	ErrIsDir            = errors.New("dotgit: expected file, found directory")
	ErrPackfileNotFound = errors.New("dotgit: packfile not found")
	ErrIdxNotFound      = errors.New("dotgit: idx file not found")
	ErrLockHeld         = errors.New("dotgit: lock already held")
)

// DotGit is a git directory's on-disk state, rooted at fs.
type DotGit struct {
	fs billy.Filesystem
}

// New wraps an existing git directory rooted at fs.
func New(fs billy.Filesystem) *DotGit { return &DotGit{fs: fs} }

// Init creates the directory skeleton a fresh repository needs.
func (d *DotGit) Init() error {
	for _, p := range []string{objectsPath, packPath, refsPath, filepath.Join(refsPath, "heads"), filepath.Join(refsPath, "tags"), logsPath} {
		if err := d.fs.MkdirAll(p, 0755); err != nil {
			return err
		}
	}
	return nil
}

// --- loose objects ---

func (d *DotGit) objectPath(id plumbing.ID) string {
	s := id.String()
	return filepath.Join(objectsPath, s[:2], s[2:])
}

// NewObject opens a temp file for a new loose object, to be renamed into
// place by the caller once the identity is known (the content must be
// fully hashed before the final path can be computed).
func (d *DotGit) NewObject() (billy.File, error) {
	return d.fs.TempFile(objectsPath, tmpObjectPrefix)
}

// SaveObject renames a temp file written by NewObject into its final,
// content-addressed path, matching spec.md §4.2's "write to a temporary
// file ... and rename atomically into place, setting mode 0444". If the
// destination already exists, the temp file is discarded instead
// (writing the same bytes twice is a no-op).
func (d *DotGit) SaveObject(tmp billy.File, id plumbing.ID) error {
	path := d.objectPath(id)
	if _, err := d.fs.Stat(path); err == nil {
		return d.fs.Remove(tmp.Name())
	}

	dir := filepath.Dir(path)
	if err := d.fs.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := d.fs.Rename(tmp.Name(), path); err != nil {
		return err
	}
	if chmod, ok := d.fs.(interface{ Chmod(string, os.FileMode) error }); ok {
		_ = chmod.Chmod(path, 0444)
	}
	return nil
}

// Object opens a loose object for reading, or ErrNotFound.
func (d *DotGit) Object(id plumbing.ID) (billy.File, error) {
	f, err := d.fs.Open(d.objectPath(id))
	if os.IsNotExist(err) {
		return nil, plumbing.ErrNotFound
	}
	return f, err
}

// HasObject reports whether a loose object exists, without opening it.
func (d *DotGit) HasObject(id plumbing.ID) bool {
	_, err := d.fs.Stat(d.objectPath(id))
	return err == nil
}

// Objects lists every loose object's identity.
func (d *DotGit) Objects() ([]plumbing.ID, error) {
	fis, err := d.fs.ReadDir(objectsPath)
	if err != nil {
		return nil, err
	}

	var ids []plumbing.ID
	for _, fi := range fis {
		if !fi.IsDir() || len(fi.Name()) != 2 {
			continue
		}
		inner, err := d.fs.ReadDir(filepath.Join(objectsPath, fi.Name()))
		if err != nil {
			return nil, err
		}
		for _, f := range inner {
			if len(f.Name()) != hash.Size*2-2 {
				continue
			}
			id, err := hash.FromHex(fi.Name() + f.Name())
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// --- packs ---

// NewObjectPack opens a temp file to stream a new pack into; the caller
// writes the pack, then calls SavePack with its checksum to rename both
// the pack and (separately, via idxfile) its index into place.
func (d *DotGit) NewObjectPack() (billy.File, error) {
	return d.fs.TempFile(packPath, tmpPackPrefix)
}

// SavePack renames a temp pack file to pack-<checksum>.pack.
func (d *DotGit) SavePack(tmp billy.File, checksum plumbing.ID) (string, error) {
	name := fmt.Sprintf("pack-%s.pack", checksum.String())
	path := filepath.Join(packPath, name)
	if err := d.fs.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}

// ObjectPacks lists the checksums of every pack present.
func (d *DotGit) ObjectPacks() ([]plumbing.ID, error) {
	fis, err := d.fs.ReadDir(packPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []plumbing.ID
	for _, fi := range fis {
		name := fi.Name()
		if !strings.HasPrefix(name, "pack-") || !strings.HasSuffix(name, ".pack") {
			continue
		}
		hex := strings.TrimSuffix(strings.TrimPrefix(name, "pack-"), ".pack")
		id, err := hash.FromHex(hex)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
	return ids, nil
}

// ObjectPack opens pack-<checksum>.pack for reading.
func (d *DotGit) ObjectPack(checksum plumbing.ID) (billy.File, error) {
	f, err := d.fs.Open(filepath.Join(packPath, fmt.Sprintf("pack-%s.pack", checksum.String())))
	if os.IsNotExist(err) {
		return nil, ErrPackfileNotFound
	}
	return f, err
}

// ObjectPackIdx opens pack-<checksum>.idx for reading.
func (d *DotGit) ObjectPackIdx(checksum plumbing.ID) (billy.File, error) {
	f, err := d.fs.Open(filepath.Join(packPath, fmt.Sprintf("pack-%s.idx", checksum.String())))
	if os.IsNotExist(err) {
		return nil, ErrIdxNotFound
	}
	return f, err
}

// NewObjectPackIdx opens a temp file to stream the companion .idx into,
// renamed by SaveIdx once computed.
func (d *DotGit) NewObjectPackIdx() (billy.File, error) {
	return d.fs.TempFile(packPath, tmpPackPrefix)
}

func (d *DotGit) SaveIdx(tmp billy.File, checksum plumbing.ID) error {
	path := filepath.Join(packPath, fmt.Sprintf("pack-%s.idx", checksum.String()))
	return d.fs.Rename(tmp.Name(), path)
}
