package karchive

import "howett.net/plist"

// IsUID reports whether v is an archive-UID leaf and, if so, returns its
// pool index. Binary archives surface UIDs as plist.UID; XML archives
// surface them as a single-key {"CF$UID": n} map. Both are recognized so
// the rest of the decoder never needs to know which source format produced
// the tree it is walking.
func IsUID(v any) (int, bool) {
	switch t := v.(type) {
	case plist.UID:
		return int(t), true
	case map[string]any:
		if len(t) != 1 {
			return 0, false
		}
		raw, ok := t["CF$UID"]
		if !ok {
			return 0, false
		}
		n, ok := toNonNegativeInt(raw)
		if !ok {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func toNonNegativeInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0, false
		}
		return n, true
	case int64:
		if n < 0 {
			return 0, false
		}
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}
