// Package logging provides the structured, leveled diagnostics every
// other package reaches for when it needs to report a degraded-but-
// not-fatal condition: a bitmap that had to be rejected, a delta-base
// cache eviction, a lock retry, a reflog entry skipped past its expiry
// window. Built on github.com/sirupsen/logrus, the way distribution's
// registry tree uses it throughout for exactly this "diagnostic, not
// an error return" role.
//
// Unlike a package-level *logrus.Entry, the fields here are carried on
// a Fields value owned by one Repository: the only truly process-wide
// state this core keeps is the logger, and scoping it to a Repository
// instead of a package global means two Repositories opened in the
// same process (a server multiplexing several repos, or a test suite)
// never interleave each other's log lines under one shared identity.
package logging

import "github.com/sirupsen/logrus"

// Component names the five subsystems that log independently, each
// getting its own *logrus.Entry tagged with a "component" field.
type Component string

const (
	Object Component = "object"
	Refs   Component = "refs"
	Bitmap Component = "bitmap"
	Blame  Component = "blame"
	Walker Component = "walker"
)

// Fields is the set of per-component loggers one Repository owns.
type Fields struct {
	base *logrus.Logger

	object *logrus.Entry
	refs   *logrus.Entry
	bitmap *logrus.Entry
	blame  *logrus.Entry
	walker *logrus.Entry
}

// New builds a Fields value writing through base. A nil base falls
// back to logrus's standard logger configuration (text formatter,
// os.Stderr, InfoLevel) rather than discarding output, since silent-
// by-default logging would defeat the point of wiring this in.
func New(base *logrus.Logger) *Fields {
	if base == nil {
		base = logrus.New()
	}
	return &Fields{
		base:   base,
		object: base.WithField("component", string(Object)),
		refs:   base.WithField("component", string(Refs)),
		bitmap: base.WithField("component", string(Bitmap)),
		blame:  base.WithField("component", string(Blame)),
		walker: base.WithField("component", string(Walker)),
	}
}

// Entry returns the logger for one component.
func (f *Fields) Entry(c Component) *logrus.Entry {
	switch c {
	case Object:
		return f.object
	case Refs:
		return f.refs
	case Bitmap:
		return f.bitmap
	case Blame:
		return f.blame
	case Walker:
		return f.walker
	default:
		return f.base.WithField("component", string(c))
	}
}
