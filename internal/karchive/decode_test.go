package karchive

import (
	"testing"

	"github.com/go-test/deep"
	"howett.net/plist"
)

func envelope(top map[string]any, pool []any) map[string]any {
	return map[string]any{
		"$archiver": "NSKeyedArchiver",
		"$version":  int64(100000),
		"$top":      top,
		"$objects":  pool,
	}
}

func classDesc(name string, ancestors ...string) map[string]any {
	classes := make([]any, 0, len(ancestors)+1)
	classes = append(classes, name)
	for _, a := range ancestors {
		classes = append(classes, a)
	}
	return map[string]any{"$classname": name, "$classes": classes}
}

func decodeOK(t *testing.T, root map[string]any) map[string]any {
	t.Helper()
	out, err := Decode(root, Options{})
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	return out
}

// S1: minimal composite with no registered handler falling back to NSObject.
func TestDecodeMinimal(t *testing.T) {
	root := envelope(
		map[string]any{"root": plist.UID(1)},
		[]any{
			"$null",
			map[string]any{"$class": plist.UID(2), "MyString": "Some string"},
			classDesc("MyClass", "NSObject"),
		},
	)

	out := decodeOK(t, root)
	want := map[string]any{"root": map[string]any{"MyString": "Some string"}}
	if diff := deep.Equal(out, want); diff != nil {
		t.Fatalf("unexpected output: %v", diff)
	}
}

// S2: NSArray decodes NS.objects in order.
func TestDecodeNSArray(t *testing.T) {
	root := envelope(
		map[string]any{"root": plist.UID(1)},
		[]any{
			"$null",
			map[string]any{"$class": plist.UID(2), "NS.objects": []any{plist.UID(3), plist.UID(4)}},
			classDesc("NSArray", "NSObject"),
			int64(1),
			int64(2),
		},
	)

	out := decodeOK(t, root)
	want := map[string]any{"root": []any{int64(1), int64(2)}}
	if diff := deep.Equal(out, want); diff != nil {
		t.Fatalf("unexpected output: %v", diff)
	}
}

// S3: NSDictionary with UID keys and values.
func TestDecodeNSDictionary(t *testing.T) {
	root := envelope(
		map[string]any{"root": plist.UID(1)},
		[]any{
			"$null",
			map[string]any{
				"$class":     plist.UID(2),
				"NS.keys":    []any{plist.UID(3)},
				"NS.objects": []any{plist.UID(4)},
			},
			classDesc("NSDictionary", "NSObject"),
			"alpha",
			int64(42),
		},
	)

	out := decodeOK(t, root)
	want := map[string]any{"root": map[string]any{"alpha": int64(42)}}
	if diff := deep.Equal(out, want); diff != nil {
		t.Fatalf("unexpected output: %v", diff)
	}
}

// S4: NSUUID formats its 16 raw bytes as the canonical 8-4-4-4-12 string and
// recognizes the {"CF$UID": n} surrogate the same as a native plist.UID.
func TestDecodeNSUUID(t *testing.T) {
	raw := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	root := envelope(
		map[string]any{"root": map[string]any{"CF$UID": int64(1)}},
		[]any{
			"$null",
			map[string]any{"$class": plist.UID(2), "NS.uuidbytes": raw},
			classDesc("NSUUID", "NSObject"),
		},
	)

	out := decodeOK(t, root)
	want := map[string]any{"root": "00112233-4455-6677-8899-aabbccddeeff"}
	if diff := deep.Equal(out, want); diff != nil {
		t.Fatalf("unexpected output: %v", diff)
	}
}

// S5: NSURL composes base and relative, treating a "$null" base as absent.
func TestDecodeNSURL(t *testing.T) {
	cases := []struct {
		name string
		base any
		want string
	}{
		{"null base", "$null", "file.txt"},
		{"with base", "https://x.test", "https://x.test/file.txt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := envelope(
				map[string]any{"root": plist.UID(1)},
				[]any{
					"$null",
					map[string]any{"$class": plist.UID(2), "NS.base": tc.base, "NS.relative": "file.txt"},
					classDesc("NSURL", "NSObject"),
				},
			)

			out := decodeOK(t, root)
			if out["root"] != tc.want {
				t.Fatalf("got %q, want %q", out["root"], tc.want)
			}
		})
	}
}

// S6: a cycle through a user key is dropped, not an error.
func TestDecodeCycleThroughUserKey(t *testing.T) {
	root := envelope(
		map[string]any{"root": plist.UID(1)},
		[]any{
			"$null",
			map[string]any{"$class": plist.UID(3), "ref": plist.UID(2)}, // A
			map[string]any{"$class": plist.UID(3), "ref": plist.UID(1)}, // B
			classDesc("MyClass", "NSObject"),
		},
	)

	out := decodeOK(t, root)
	a, ok := out["root"].(map[string]any)
	if !ok {
		t.Fatalf("root is not a mapping: %#v", out["root"])
	}
	b, ok := a["ref"].(map[string]any)
	if !ok {
		t.Fatalf("root.ref is not a mapping: %#v", a["ref"])
	}
	// B's ref closes the cycle back to A, so it is the edge that gets
	// dropped; A's own ref (to B) is a forward reference and survives.
	if _, present := b["ref"]; present {
		t.Fatalf("expected back-edge to be dropped, got %#v", b["ref"])
	}
}

// S7: an envelope whose $archiver doesn't match is rejected by both entry
// points.
func TestEnvelopeMismatch(t *testing.T) {
	root := map[string]any{
		"$archiver": "Other",
		"$version":  int64(100000),
		"$top":      map[string]any{"root": plist.UID(0)},
		"$objects":  []any{"x"},
	}

	if IsEncoded(root) {
		t.Fatal("IsEncoded: expected false for mismatched archiver")
	}
	if _, err := Decode(root, Options{}); err == nil {
		t.Fatal("Decode: expected envelope-mismatch error, got nil")
	}
}

// NSHashTable's $1 is the one field where a cycle must raise, not drop.
func TestDecodeHashTableCycleErrors(t *testing.T) {
	root := envelope(
		map[string]any{"root": plist.UID(1)},
		[]any{
			"$null",
			map[string]any{"$class": plist.UID(2), "$1": plist.UID(1)},
			classDesc("NSHashTable", "NSObject"),
		},
	)

	if _, err := Decode(root, Options{}); err == nil {
		t.Fatal("expected a cycle error from NSHashTable's $1, got nil")
	}
}

// Invariant 1: no residual bookkeeping keys survive into the decoded tree.
func TestDecodeNoResidualKeys(t *testing.T) {
	forbidden := []string{
		"$class", "$classname", "$classes", "CF$UID", "NS.objects", "NS.keys",
		"NS.string", "NS.data", "NS.time", "NS.base", "NS.relative", "NS.uuidbytes", "$1",
	}

	root := envelope(
		map[string]any{"root": plist.UID(1)},
		[]any{
			"$null",
			map[string]any{
				"$class": plist.UID(2),
				"nested": plist.UID(3),
				"label":  "top",
			},
			classDesc("MyClass", "NSObject"),
			map[string]any{"$class": plist.UID(2), "label": "leaf"},
		},
	)

	out := decodeOK(t, root)
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			for k, child := range t {
				for _, f := range forbidden {
					if k == f {
						panic("residual key found: " + f)
					}
				}
				walk(child)
			}
		case []any:
			for _, child := range t {
				walk(child)
			}
		}
	}
	walk(out)
}

// Invariant 4: decoding strips the envelope, so the output is never itself
// recognized as an encoded archive.
func TestDecodeHeaderIdempotence(t *testing.T) {
	root := envelope(map[string]any{"root": "value"}, nil)
	out := decodeOK(t, root)
	if IsEncoded(out) {
		t.Fatal("decoded output should not satisfy IsEncoded")
	}
}

// Invariant 5: the CF$UID surrogate and a native plist.UID referring to the
// same index are indistinguishable to IsUID.
func TestIsUIDSurrogateEquivalence(t *testing.T) {
	native := plist.UID(7)
	surrogate := map[string]any{"CF$UID": int64(7)}

	n, ok := IsUID(native)
	if !ok || n != 7 {
		t.Fatalf("IsUID(native) = %d, %v", n, ok)
	}
	s, ok := IsUID(surrogate)
	if !ok || s != 7 {
		t.Fatalf("IsUID(surrogate) = %d, %v", s, ok)
	}
}

// Invariant 3: the "$null" sentinel never survives decode; it is mapped to
// the null value wherever it occurs as a pool entry.
func TestDecodeNullSentinel(t *testing.T) {
	root := envelope(map[string]any{"root": plist.UID(0)}, []any{"$null"})
	out := decodeOK(t, root)
	if out["root"] != nil {
		t.Fatalf("expected nil, got %#v", out["root"])
	}
}
