package revision

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"

	"github.com/vcscore/corevcs/plumbing/object"
)

// dateQueue orders commits by committer date, most recent first, using
// a red-black tree keyed by date so repeated pop-max is O(log n) even
// when many commits share the same Unix second (bucketed per key).
// Grounded on SPEC_FULL.md's wiring of github.com/emirpasic/gods as the
// walker's priority queue.
type dateQueue struct {
	t *treemap.Map // int64 unix-seconds -> []*object.Commit
}

func newDateQueue() *dateQueue {
	return &dateQueue{t: treemap.NewWith(utils.Int64Comparator)}
}

func (q *dateQueue) push(c *object.Commit) {
	key := c.Committer.When.Unix()
	if v, ok := q.t.Get(key); ok {
		bucket := v.([]*object.Commit)
		q.t.Put(key, append(bucket, c))
		return
	}
	q.t.Put(key, []*object.Commit{c})
}

// popMax removes and returns the commit with the latest date, or nil if
// the queue is empty.
func (q *dateQueue) popMax() *object.Commit {
	key, v := q.t.Max()
	if key == nil {
		return nil
	}
	bucket := v.([]*object.Commit)
	c := bucket[len(bucket)-1]
	bucket = bucket[:len(bucket)-1]
	if len(bucket) == 0 {
		q.t.Remove(key)
	} else {
		q.t.Put(key, bucket)
	}
	return c
}

func (q *dateQueue) empty() bool { return q.t.Empty() }
