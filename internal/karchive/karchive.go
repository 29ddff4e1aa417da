// Package karchive decodes Apple NSKeyedArchiver encoded property lists
// into a plain, self-describing tree of primitive values, containers, and
// named records.
//
// The package accepts whatever an external plist loader produced: a tree
// whose interior nodes are map[string]any / []any and whose leaves are the
// usual plist primitives plus an archive-UID leaf (either a plist.UID value
// or the {"CF$UID": n} surrogate XML archives use). It does not parse
// bplist00 or XML itself; see internal/plistsrc for that adapter.
package karchive

import "go.uber.org/zap"

// Mode selects the decoder's behavior when it hits a non-fatal structural
// problem (an ancestor cycle anywhere except NSHashTable's $1, where a
// cycle is always fatal, see decodeHashTable in handlers.go).
type Mode int

const (
	// ModeStrict aborts the whole Decode call on the first structural error.
	ModeStrict Mode = iota
	// ModeBestEffort is identical to ModeStrict for structural errors (those
	// are never tolerated), but routes cycle-guard drops through the logger
	// instead of staying silent.
	ModeBestEffort
)

// Options controls a single Decode call. The zero value is ModeStrict with
// no logger.
type Options struct {
	Mode Mode
	// Log receives a diagnostic line whenever the cycle guard drops a
	// reference and Mode is ModeBestEffort. Nil discards them.
	Log *zap.SugaredLogger
}

func (o Options) debug(format string, args ...any) {
	if o.Mode == ModeBestEffort && o.Log != nil {
		o.Log.Debugf(format, args...)
	}
}
