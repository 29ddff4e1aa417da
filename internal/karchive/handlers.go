package karchive

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// handlerFunc is a per-class structural rewrite. It receives the record
// (the raw map still carrying $class) and the already-resolved class name,
// and returns the decoded value. Handlers never walk UID leaves directly —
// they call back into the decoder so cycle detection, pool dereference, and
// class lookup stay uniform.
type handlerFunc func(d *decoder, record map[string]any, className string, ancestors *ancestorStack) (any, error)

var handlerTable = map[string]handlerFunc{}

func init() {
	RegisterHandler("NSArray", decodeArrayLike)
	RegisterHandler("NSMutableArray", decodeArrayLike)
	RegisterHandler("NSSet", decodeArrayLike)
	RegisterHandler("NSMutableSet", decodeArrayLike)
	RegisterHandler("NSDictionary", decodeDictionary)
	RegisterHandler("NSMutableDictionary", decodeDictionary)
	RegisterHandler("NSString", decodeString)
	RegisterHandler("NSMutableString", decodeString)
	RegisterHandler("NSData", decodeData)
	RegisterHandler("NSMutableData", decodeData)
	RegisterHandler("NSDate", decodeDate)
	RegisterHandler("NSNull", decodeNull)
	RegisterHandler("NSUUID", decodeUUID)
	RegisterHandler("NSURL", decodeURL)
	RegisterHandler("NSHashTable", decodeHashTable)
	RegisterHandler("NSObject", decodeComposite)
}

// RegisterHandler adds or replaces a class handler. The table is built at
// package init and by callers during their own setup; it is never mutated
// mid-decode, so it needs no synchronization against concurrent Decode
// calls.
func RegisterHandler(className string, h handlerFunc) {
	handlerTable[className] = h
}

func lookupHandler(className string) (handlerFunc, bool) {
	h, ok := handlerTable[className]
	return h, ok
}

func decodeArrayLike(d *decoder, record map[string]any, className string, ancestors *ancestorStack) (any, error) {
	raw, ok := record["NS.objects"]
	if !ok {
		return nil, errStructural(className, "NS.objects", "missing NS.objects")
	}
	objects, ok := raw.([]any)
	if !ok {
		return nil, errStructural(className, "NS.objects", fmt.Sprintf("unsupported type %T", raw))
	}
	return d.decode(objects, ancestors)
}

func decodeDictionary(d *decoder, record map[string]any, className string, ancestors *ancestorStack) (any, error) {
	rawKeys, hasKeys := record["NS.keys"]
	rawObjects, hasObjects := record["NS.objects"]
	if !hasKeys || !hasObjects {
		return nil, errStructural(className, "NS.keys/NS.objects", "missing NS.keys or NS.objects")
	}
	keys, ok := rawKeys.([]any)
	if !ok {
		return nil, errStructural(className, "NS.keys", fmt.Sprintf("unsupported type %T", rawKeys))
	}
	objects, ok := rawObjects.([]any)
	if !ok {
		return nil, errStructural(className, "NS.objects", fmt.Sprintf("unsupported type %T", rawObjects))
	}
	if len(keys) != len(objects) {
		return nil, errStructural(className, "NS.keys", "length mismatch between NS.keys and NS.objects")
	}

	out := make(map[string]any, len(keys))
	for i := range keys {
		keyVal, drop, err := d.resolveField(keys[i], ancestors)
		if err != nil {
			return nil, err
		}
		if drop {
			continue
		}
		keyStr, ok := keyVal.(string)
		if !ok {
			return nil, errStructural(className, fmt.Sprintf("NS.keys[%d]", i), "decoded key is not text")
		}

		valVal, drop, err := d.resolveField(objects[i], ancestors)
		if err != nil {
			return nil, err
		}
		if drop {
			continue
		}
		out[keyStr] = valVal
	}
	return out, nil
}

func decodeString(d *decoder, record map[string]any, className string, ancestors *ancestorStack) (any, error) {
	raw, ok := record["NS.string"]
	if !ok {
		return nil, errStructural(className, "NS.string", "missing NS.string")
	}
	s, ok := raw.(string)
	if !ok {
		return nil, errStructural(className, "NS.string", fmt.Sprintf("unsupported type %T", raw))
	}
	return s, nil
}

func decodeData(d *decoder, record map[string]any, className string, ancestors *ancestorStack) (any, error) {
	raw, ok := record["NS.data"]
	if !ok {
		return nil, errStructural(className, "NS.data", "missing NS.data")
	}
	b, ok := raw.([]byte)
	if !ok {
		return nil, errStructural(className, "NS.data", fmt.Sprintf("unsupported type %T", raw))
	}
	return b, nil
}

// cocoaEpoch is the reference point NSDate's NS.time is measured from:
// 2001-01-01 00:00:00 UTC.
var cocoaEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

func decodeDate(d *decoder, record map[string]any, className string, ancestors *ancestorStack) (any, error) {
	raw, ok := record["NS.time"]
	if !ok {
		return nil, errStructural(className, "NS.time", "missing NS.time")
	}
	secs, ok := raw.(float64)
	if !ok {
		return nil, errStructural(className, "NS.time", fmt.Sprintf("unsupported type %T", raw))
	}
	return cocoaEpoch.Add(time.Duration(secs * float64(time.Second))), nil
}

func decodeNull(d *decoder, record map[string]any, className string, ancestors *ancestorStack) (any, error) {
	return nil, nil
}

func decodeUUID(d *decoder, record map[string]any, className string, ancestors *ancestorStack) (any, error) {
	raw, ok := record["NS.uuidbytes"]
	if !ok {
		return nil, errStructural(className, "NS.uuidbytes", "missing NS.uuidbytes")
	}
	b, ok := raw.([]byte)
	if !ok || len(b) != 16 {
		return nil, errStructural(className, "NS.uuidbytes", "not 16 bytes")
	}
	id, err := uuid.FromBytes(b)
	if err != nil {
		return nil, errStructural(className, "NS.uuidbytes", err.Error())
	}
	return id.String(), nil
}

func decodeURL(d *decoder, record map[string]any, className string, ancestors *ancestorStack) (any, error) {
	rawBase, hasBase := record["NS.base"]
	rawRelative, hasRelative := record["NS.relative"]
	if !hasBase || !hasRelative {
		return nil, errStructural(className, "NS.base/NS.relative", "missing NS.base or NS.relative")
	}

	// A cyclic NS.base or NS.relative is dropped like any other field and
	// comes back as nil, the same as a null one.
	baseVal, _, err := d.resolveField(rawBase, ancestors)
	if err != nil {
		return nil, err
	}
	relativeVal, _, err := d.resolveField(rawRelative, ancestors)
	if err != nil {
		return nil, err
	}

	relative, ok := relativeVal.(string)
	if !ok {
		return nil, errStructural(className, "NS.relative", "not text")
	}

	if baseVal == nil {
		return relative, nil
	}
	base, ok := baseVal.(string)
	if !ok {
		return nil, errStructural(className, "NS.base", "not text")
	}
	return base + "/" + relative, nil
}

func decodeHashTable(d *decoder, record map[string]any, className string, ancestors *ancestorStack) (any, error) {
	raw, ok := record["$1"]
	if !ok {
		return nil, errStructural(className, "$1", "missing $1")
	}
	idx, ok := IsUID(raw)
	if !ok {
		return nil, errStructural(className, "$1", fmt.Sprintf("unsupported type %T", raw))
	}
	if idx < 0 || idx >= len(d.pool) {
		return nil, errPoolRef(className, "$1", "UID out of range")
	}
	if ancestors.contains(idx) {
		// Unlike every other structural field, losing $1 loses the whole
		// table, so this is a hard error rather than a silent drop.
		return nil, errCycle(className, "$1", "cyclic reference")
	}

	referenced, ok := d.pool[idx].(map[string]any)
	if !ok {
		return nil, errPoolRef(className, "$1", "referenced entry is missing")
	}

	ancestors.push(idx)
	value, err := decodeCompositeExcluding(d, referenced, className, ancestors, "container")
	ancestors.pop()
	return value, err
}

// structuralExclusions lists additional keys the generic composite handler
// omits for specific classes, beyond $class itself — UI-toolkit records
// carry back-references to their containing view hierarchy that would
// otherwise form cycles or duplicate enormous subtrees.
var structuralExclusions = map[string][]string{
	"NSView":               {"NSNextResponder", "NSSuperview", "NSSubviews", "NSCell"},
	"NSTextField":          {"NSNextResponder", "NSSuperview", "NSSubviews", "NSCell"},
	"NSImageView":          {"NSNextResponder", "NSSuperview", "NSSubviews", "NSCell"},
	"NSPopUpButton":        {"NSNextResponder", "NSSuperview", "NSSubviews", "NSCell"},
	"NSButton":             {"NSNextResponder", "NSSuperview", "NSSubviews", "NSCell"},
	"NSBox":                {"NSContentView", "NSNextResponder", "NSSubviews", "NSSuperview"},
	"NSNibOutletConnector": {"NSSource"},
}

// decodeComposite is the fallback handler for any class with no more
// specific rewrite: it decodes every user key (all keys except $class and
// the per-class structural exclusions) and drops keys that cycle or decode
// to null.
func decodeComposite(d *decoder, record map[string]any, className string, ancestors *ancestorStack) (any, error) {
	return decodeCompositeExcluding(d, record, className, ancestors)
}

// decodeCompositeExcluding is decodeComposite with additional keys to omit
// beyond $class and the per-class structural exclusion table. Used by
// decodeHashTable, whose referenced record wraps its contents in a
// "container" key that would otherwise leak into the output.
func decodeCompositeExcluding(d *decoder, record map[string]any, className string, ancestors *ancestorStack, extra ...string) (any, error) {
	exclude := map[string]bool{"$class": true}
	for _, k := range structuralExclusions[className] {
		exclude[k] = true
	}
	for _, k := range extra {
		exclude[k] = true
	}

	out := make(map[string]any)
	for key, raw := range record {
		if exclude[key] {
			continue
		}
		val, drop, err := d.resolveField(raw, ancestors)
		if err != nil {
			return nil, err
		}
		if drop || val == nil {
			continue
		}
		out[key] = val
	}
	return out, nil
}
