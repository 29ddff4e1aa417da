// Package plistsrc adapts the external howett.net/plist library into the
// plain any tree internal/karchive expects, the way internal/elfx adapted
// debug/elf for Dart AOT analysis: open, validate, hand back a typed
// wrapper around the stdlib/third-party primitive.
package plistsrc

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"howett.net/plist"
)

var (
	// ErrNotPlist is returned when a file's leading bytes match neither a
	// binary nor an XML plist signature.
	ErrNotPlist = errors.New("plistsrc: not a property list")
)

var (
	binarySignature = []byte("bplist00")
	xmlSignature    = []byte("<?xml")
	utf8BOM         = []byte{0xEF, 0xBB, 0xBF}
)

// Load reads path, sniffs its signature, and parses it with howett.net/plist,
// returning the root value as the any tree internal/karchive and
// internal/schema operate on. It does not decode keyed archives itself —
// callers pass the result to karchive.Decode or schema.Walk.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plistsrc: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse sniffs and decodes an in-memory plist payload. Exported separately
// from Load so callers that already hold the bytes (e.g. plistrc extract,
// which reads each file once to compute its cache key) don't pay for a
// second read.
func Parse(data []byte) (any, error) {
	if !Sniff(data) {
		return nil, ErrNotPlist
	}

	var root any
	if _, err := plist.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("plistsrc: parse: %w", err)
	}
	return root, nil
}

// Sniff reports whether data begins with a recognized plist signature:
// the binary "bplist00" magic, or an XML declaration optionally preceded by
// a UTF-8 byte-order mark. It does not validate the rest of the document —
// that is the plist library's job — it exists only to turn "not a plist at
// all" into a clear early error instead of a confusing parser failure.
func Sniff(data []byte) bool {
	if bytes.HasPrefix(data, binarySignature) {
		return true
	}
	trimmed := bytes.TrimPrefix(data, utf8BOM)
	return bytes.HasPrefix(trimmed, xmlSignature)
}
