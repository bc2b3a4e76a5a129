package dotgit

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/vcscore/corevcs/plumbing"
)

// RefLock is one held "<refname>.lock" exclusive-create lock, the
// primitive the Transaction Layer's prepare phase (spec.md §4.4)
// acquires for every ref touched before any value is written.
type RefLock struct {
	d    *DotGit
	name plumbing.ReferenceName
	file billy.File
}

func lockPath(name plumbing.ReferenceName) string {
	return refPath(name) + ".lock"
}

// LockRef acquires name's lock file, failing with ErrLockHeld if
// another transaction (or process) already holds it.
func (d *DotGit) LockRef(name plumbing.ReferenceName) (*RefLock, error) {
	if err := d.fs.MkdirAll(filepath.Dir(lockPath(name)), 0755); err != nil {
		return nil, err
	}
	f, err := d.fs.OpenFile(lockPath(name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLockHeld
		}
		return nil, err
	}
	return &RefLock{d: d, name: name, file: f}, nil
}

// Write stores content (as produced by plumbing.Reference.Strings) into
// the lock file, ready for Commit to rename into place.
func (l *RefLock) Write(content string) error {
	_, err := l.file.Write([]byte(content))
	return err
}

// Commit renames the lock file over the real ref path, publishing the
// new value atomically.
func (l *RefLock) Commit() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	return l.d.fs.Rename(lockPath(l.name), refPath(l.name))
}

// Abort discards the lock without publishing anything.
func (l *RefLock) Abort() error {
	_ = l.file.Close()
	return l.d.fs.Remove(lockPath(l.name))
}

// Name reports the ref this lock guards.
func (l *RefLock) Name() plumbing.ReferenceName { return l.name }
