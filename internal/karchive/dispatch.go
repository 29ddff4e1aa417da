package karchive

import (
	"fmt"
	"time"
)

const (
	archiverKey     = "$archiver"
	versionKey      = "$version"
	objectsKey      = "$objects"
	topKey          = "$top"
	expectedArchive = "NSKeyedArchiver"
	expectedVersion = 100000
)

// decoder holds the state shared by every recursive call within one
// Decode invocation: the read-only object pool and the caller's options.
// It carries no package-level or global state, so independent Decode calls
// never interfere with one another (spec invariant 4).
type decoder struct {
	pool []any
	opts Options
}

// IsEncoded reports whether root is an NSKeyedArchiver envelope.
func IsEncoded(root any) bool {
	m, ok := root.(map[string]any)
	if !ok {
		return false
	}
	archiver, _ := m[archiverKey].(string)
	version, versionOK := toNonNegativeInt(m[versionKey])
	return archiver == expectedArchive && versionOK && version == expectedVersion
}

// Decode validates root as an NSKeyedArchiver envelope and resolves every
// entry in its $top map into a decoded value tree.
func Decode(root any, opts Options) (map[string]any, error) {
	m, ok := root.(map[string]any)
	if !ok {
		return nil, errEnvelope("root is not a mapping")
	}

	archiver, _ := m[archiverKey].(string)
	version, versionOK := toNonNegativeInt(m[versionKey])
	if archiver != expectedArchive || !versionOK || version != expectedVersion {
		return nil, errEnvelope(fmt.Sprintf("unsupported archive: archiver=%v version=%v", m[archiverKey], m[versionKey]))
	}

	pool, _ := m[objectsKey].([]any)
	top, _ := m[topKey].(map[string]any)

	d := &decoder{pool: pool, opts: opts}

	out := make(map[string]any, len(top))
	for name, v := range top {
		idx, ok := IsUID(v)
		if !ok {
			out[name] = v
			continue
		}
		if idx < 0 || idx >= len(pool) {
			return nil, errPoolRef("", fmt.Sprintf("$top[%q]", name), "UID out of range")
		}
		decoded, err := d.decode(pool[idx], newAncestorStack(idx))
		if err != nil {
			return nil, err
		}
		out[name] = decoded
	}
	return out, nil
}

// decode is the object dispatcher (C3): given any encoded value (never a
// bare UID — callers resolve those via resolveField so they can apply
// their own cycle policy) it returns the decoded value.
func (d *decoder) decode(v any, ancestors *ancestorStack) (any, error) {
	switch t := v.(type) {
	case nil, bool, int, int64, uint64, float64, time.Time:
		return v, nil
	case []byte:
		return v, nil
	case string:
		if t == "$null" {
			return nil, nil
		}
		return t, nil
	case []any:
		out := make([]any, 0, len(t))
		for _, elem := range t {
			decoded, drop, err := d.resolveField(elem, ancestors)
			if err != nil {
				return nil, err
			}
			if drop {
				continue
			}
			out = append(out, decoded)
		}
		return out, nil
	case map[string]any:
		if _, hasClass := t["$class"]; !hasClass {
			return d.decodePlainMapping(t, ancestors)
		}
		return d.decodeRecord(t, ancestors)
	default:
		return nil, errUnsupported(fmt.Sprintf("unsupported value type: %T", v))
	}
}

// resolveField dereferences a single field value that may or may not be a
// UID reference. If it is a UID pointing at an ancestor already on the
// decode stack, it reports drop=true instead of recursing — this is the
// cycle guard's (C5) policy point, applied uniformly at every place a
// handler pulls in a child by reference (array elements, dict keys and
// values, composite user fields).
func (d *decoder) resolveField(raw any, ancestors *ancestorStack) (value any, drop bool, err error) {
	idx, ok := IsUID(raw)
	if !ok {
		v, err := d.decode(raw, ancestors)
		return v, false, err
	}
	if idx < 0 || idx >= len(d.pool) {
		return nil, false, errPoolRef("", "UID", fmt.Sprintf("index %d out of range", idx))
	}
	if ancestors.contains(idx) {
		d.opts.debug("karchive: dropping cyclic reference to pool[%d]", idx)
		return nil, true, nil
	}
	ancestors.push(idx)
	v, err := d.decode(d.pool[idx], ancestors)
	ancestors.pop()
	if err != nil {
		return nil, false, err
	}
	return v, false, nil
}

// decodePlainMapping handles synthetic mappings with no $class, e.g. $top
// entries whose value is already a plain map rather than a UID.
func (d *decoder) decodePlainMapping(m map[string]any, ancestors *ancestorStack) (any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == "$class" {
			continue
		}
		decoded, drop, err := d.resolveField(v, ancestors)
		if err != nil {
			return nil, err
		}
		if drop {
			continue
		}
		out[k] = decoded
	}
	return out, nil
}

// decodeRecord resolves a record's class and invokes the matching handler,
// falling back to the first $classes ancestor that has one. The generic
// composite handler is reached only through such a match (e.g. NSObject);
// a class with no match at all is a dispatch error.
func (d *decoder) decodeRecord(record map[string]any, ancestors *ancestorStack) (any, error) {
	className, classAncestors, err := classDescriptor(record, d.pool)
	if err != nil {
		return nil, err
	}

	if h, ok := lookupHandler(className); ok {
		return h(d, record, className, ancestors)
	}
	for _, ancestorClass := range classAncestors {
		if h, ok := lookupHandler(ancestorClass); ok {
			return h(d, record, className, ancestors)
		}
	}
	return nil, errDispatch(className, "missing handler for class")
}
