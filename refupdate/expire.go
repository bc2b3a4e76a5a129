package refupdate

import (
	"time"

	"github.com/vcscore/corevcs/config"
	"github.com/vcscore/corevcs/logging"
	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/storage/filesystem/dotgit"
)

// ExpireReflog drops every entry of name's reflog older than
// cfg.GC.ReflogExpire relative to now, rewriting the file with only the
// entries still inside the retention window. A zero or negative
// ReflogExpire disables expiry (the window never closes) rather than
// pruning everything; config.Default sets it to 90 days.
func ExpireReflog(dir *dotgit.DotGit, name plumbing.ReferenceName, cfg *config.Config, now time.Time, log *logging.Fields) (kept, pruned int, err error) {
	if cfg.GC.ReflogExpire <= 0 {
		return 0, 0, nil
	}

	entries, err := dir.ReadReflog(name)
	if err != nil {
		return 0, 0, err
	}

	cutoff := now.Add(-cfg.GC.ReflogExpire)
	survivors := make([]dotgit.ReflogEntry, 0, len(entries))
	for _, e := range entries {
		if e.Time.Before(cutoff) {
			pruned++
			if log != nil {
				log.Entry(logging.Refs).WithFields(map[string]interface{}{
					"ref":  name,
					"time": e.Time,
				}).Debug("reflog entry past expiry window, skipped")
			}
			continue
		}
		survivors = append(survivors, e)
	}

	if pruned == 0 {
		return len(entries), 0, nil
	}
	if err := dir.WriteReflog(name, survivors); err != nil {
		return 0, 0, err
	}
	return len(survivors), pruned, nil
}
