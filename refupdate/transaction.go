// Package refupdate implements the Transaction Layer (spec.md §4.4): a
// batch of reference updates committed atomically in three phases
// (prepare, write, commit) over dotgit's per-ref lock files. Grounded on
// the same prepare/write/commit shape the design notes point to in the
// pack's backup and content-addressed-storage repos, adapted here to
// ref-store terms: each record in a transaction names a ref, its new
// value (or none, for a deletion), an optional expected old value for
// optimistic concurrency, flags, and a human-readable reason recorded
// in the reflog.
package refupdate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vcscore/corevcs/logging"
	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/storage/filesystem/dotgit"
)

// lockRetries bounds how many times prepare retries a contended lock
// before giving up, matching the teacher's bounded-retry discipline for
// transient lock contention rather than failing on the first collision
// or retrying forever.
const lockRetries = 5

var lockBackoff = 10 * time.Millisecond

// Flags modify how one update record is validated and logged.
type Flags uint8

const (
	// Deref is recorded on an Update, but neither AddUpdate nor Commit
	// consults it: an update always applies to Name itself, never to the
	// target of a symbolic Name.
	Deref Flags = 1 << iota
	// Force skips the expected-old check even when one was supplied.
	Force
)

var (
	ErrNameInvalid  = errors.New("refupdate: invalid reference name")
	ErrRefMismatch  = errors.New("refupdate: reference value does not match expected old value")
	ErrNameConflict = errors.New("refupdate: reference name conflicts with an existing ref path")
	ErrLockHeld     = dotgit.ErrLockHeld
)

// Update is one record in a Transaction: set (or, if New is nil,
// delete) Name, optionally requiring its current value to equal Old.
type Update struct {
	Name    plumbing.ReferenceName
	New     *plumbing.Reference // nil means "delete"
	Old     *plumbing.ID        // nil means "no expected-old check"
	Flags   Flags
	Reason  string
}

// Transaction accumulates Updates and commits them together.
type Transaction struct {
	dir     *dotgit.DotGit
	updates []Update
	log     *logging.Fields

	locks map[plumbing.ReferenceName]*dotgit.RefLock
}

// New starts an empty transaction over dir.
func New(dir *dotgit.DotGit) *Transaction {
	return &Transaction{dir: dir}
}

// SetLogger attaches the Repository's logging.Fields so lock
// contention retries are reported instead of silently eaten. A
// Transaction built via New and never given a logger skips logging
// entirely rather than panicking on a nil *logging.Fields.
func (t *Transaction) SetLogger(f *logging.Fields) { t.log = f }

// AddUpdate stages one record. Name is validated immediately so a
// caller gets NameInvalid before any lock is taken.
func (t *Transaction) AddUpdate(u Update) error {
	if err := plumbing.ValidateName(u.Name); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNameInvalid, u.Name, err)
	}
	t.updates = append(t.updates, u)
	return nil
}

// Commit runs the three-phase commit described in spec.md §4.4:
// prepare (lock every touched ref in sorted order, check expected-old
// and name-prefix conflicts), write (store each new value and reflog
// entry into its lock file), commit (rename every lock file into
// place). A failure during prepare leaves no side effects; a failure
// partway through the final rename pass leaves whichever renames
// already succeeded in place, an accepted limitation of cooperative
// file-lock transactions that spec.md documents rather than hides.
func (t *Transaction) Commit() error {
	if len(t.updates) == 0 {
		return nil
	}

	if err := t.prepare(); err != nil {
		t.releaseAll()
		return err
	}

	if err := t.write(); err != nil {
		t.releaseAll()
		return err
	}

	return t.commitLocks()
}

func (t *Transaction) prepare() error {
	sorted := append([]Update(nil), t.updates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	existing, err := t.dir.Refs()
	if err != nil {
		return err
	}
	existingNames := make(map[plumbing.ReferenceName]bool, len(existing))
	for _, r := range existing {
		existingNames[r.Name()] = true
	}

	t.locks = make(map[plumbing.ReferenceName]*dotgit.RefLock, len(sorted))

	for _, u := range sorted {
		if u.New != nil {
			if err := checkNoPrefixConflict(existingNames, u.Name); err != nil {
				return err
			}
		}

		lock, err := t.lockWithRetry(u.Name)
		if err != nil {
			return err
		}
		t.locks[u.Name] = lock

		if u.Old != nil && u.Flags&Force == 0 {
			cur, err := t.dir.ReadRef(u.Name)
			curHash := plumbing.ZeroID
			if err == nil {
				curHash = cur.Hash()
			} else if err != plumbing.ErrNotFound {
				return err
			}
			if curHash != *u.Old {
				return fmt.Errorf("%w: %s", ErrRefMismatch, u.Name)
			}
		}
	}
	return nil
}

// lockWithRetry acquires name's lock file, retrying with a short
// backoff while another transaction holds it — a ref touched by two
// racing callers (a fetch and a concurrent push, say) is common enough
// that failing outright on the first collision would be needlessly
// brittle, but retrying forever would hang a caller behind a truly
// stuck lock.
func (t *Transaction) lockWithRetry(name plumbing.ReferenceName) (*dotgit.RefLock, error) {
	var lastErr error
	for attempt := 0; attempt < lockRetries; attempt++ {
		lock, err := t.dir.LockRef(name)
		if err == nil {
			return lock, nil
		}
		if err != dotgit.ErrLockHeld {
			return nil, err
		}
		lastErr = err
		if t.log != nil {
			t.log.Entry(logging.Refs).WithFields(map[string]interface{}{
				"ref":     name,
				"attempt": attempt + 1,
			}).Warn("ref lock contended, retrying")
		}
		time.Sleep(lockBackoff << uint(attempt))
	}
	return nil, lastErr
}

// checkNoPrefixConflict enforces spec.md's "refs/x and refs/x/y cannot
// coexist": neither may be a strict path-prefix of the other among the
// refs that already exist.
func checkNoPrefixConflict(existing map[plumbing.ReferenceName]bool, name plumbing.ReferenceName) error {
	s := string(name)
	for other := range existing {
		o := string(other)
		if o == s {
			continue
		}
		if len(o) > len(s) && o[:len(s)] == s && o[len(s)] == '/' {
			return fmt.Errorf("%w: %s is a prefix of existing %s", ErrNameConflict, name, other)
		}
		if len(s) > len(o) && s[:len(o)] == o && s[len(o)] == '/' {
			return fmt.Errorf("%w: %s is a prefix of new %s", ErrNameConflict, other, name)
		}
	}
	return nil
}

func (t *Transaction) write() error {
	now := time.Now()
	for _, u := range t.updates {
		lock := t.locks[u.Name]
		if u.New == nil {
			continue // deletions are applied in commitLocks via Remove
		}

		if err := lock.Write(u.New.Strings()[1] + "\n"); err != nil {
			return err
		}

		old := plumbing.ZeroID
		if u.Old != nil {
			old = *u.Old
		}
		if err := t.dir.AppendReflog(u.Name, dotgit.ReflogEntry{
			Old:     old,
			New:     u.New.Hash(),
			Name:    "refupdate",
			Email:   "refupdate@localhost",
			Time:    now,
			Message: u.Reason,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transaction) commitLocks() error {
	for _, u := range t.updates {
		lock := t.locks[u.Name]
		if u.New == nil {
			_ = lock.Abort()
			if err := t.dir.RemoveRef(u.Name); err != nil {
				return err
			}
			continue
		}
		if err := lock.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transaction) releaseAll() {
	for _, lock := range t.locks {
		_ = lock.Abort()
	}
}
