// Package schema derives a shallow, per-container schema from arbitrary
// plist trees: for every dictionary encountered, the set of keys it carries
// and the value type under each key, with array element types merged into a
// small union.
package schema

import (
	"sort"
	"strings"
	"time"

	"howett.net/plist"

	"plistrc/internal/karchive"
)

// Column is one key-to-type entry within a Table.
type Column struct {
	Name      string
	ValueType string
}

// Table is the schema of a single dictionary encountered while walking a
// plist tree, addressed by its dotted key path ("." for the root).
type Table struct {
	KeyPath string
	Columns []Column
}

type node struct {
	name      string
	keyPath   string
	valueType string
	children  []*node
}

// Walk derives the full set of dictionary schemas reachable from root,
// deduplicated and sorted by key path.
func Walk(root any) []Table {
	n := buildNode(root, nil)

	var defs []*node
	collectDictNodes(n, &defs)

	seen := make(map[string]bool)
	var tables []Table
	for _, d := range defs {
		if len(d.children) == 0 {
			continue
		}
		t := Table{KeyPath: d.keyPath, Columns: columnsOf(d)}
		sig := signature(t)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		tables = append(tables, t)
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].KeyPath < tables[j].KeyPath })
	return tables
}

func buildNode(item any, keyPathSegments []string) *node {
	n := &node{
		keyPath:   formatKeyPath(keyPathSegments),
		valueType: valueType(item),
	}

	switch t := item.(type) {
	case map[string]any:
		for k, v := range t {
			child := childNode(v, append(append([]string{}, keyPathSegments...), k))
			child.name = k
			n.children = append(n.children, child)
		}
	case []any:
		for _, v := range t {
			child := childNode(v, keyPathSegments)
			n.children = append(n.children, child)
		}
	}
	return n
}

// childNode builds the node for one dict value or array element: composite
// values (arrays, dicts) recurse to collect their own schema; everything
// else is a leaf carrying only its value type.
func childNode(item any, keyPathSegments []string) *node {
	vt := valueType(item)
	if !isComposite(vt) {
		return &node{valueType: vt}
	}
	return buildNode(item, keyPathSegments)
}

// formatKeyPath renders a dotted key path, using "." for the root.
func formatKeyPath(segments []string) string {
	if len(segments) == 0 {
		return "."
	}
	return strings.Join(segments, ".")
}

func isComposite(valueType string) bool {
	return valueType == "array" || valueType == "dict"
}

func collectDictNodes(n *node, out *[]*node) {
	if n.valueType == "dict" {
		*out = append(*out, n)
	}
	for _, child := range n.children {
		if isComposite(child.valueType) {
			collectDictNodes(child, out)
		}
	}
}

func columnsOf(d *node) []Column {
	cols := make([]Column, 0, len(d.children))
	for _, child := range d.children {
		vt := child.valueType
		if vt == "array" {
			vt = arrayUnionType(child)
		}
		cols = append(cols, Column{Name: child.name, ValueType: vt})
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })
	return cols
}

func arrayUnionType(arrayNode *node) string {
	types := make(map[string]bool)
	for _, elem := range arrayNode.children {
		types[elem.valueType] = true
	}
	sorted := make([]string, 0, len(types))
	for t := range types {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)
	return "array[" + strings.Join(sorted, ",") + "]"
}

func signature(t Table) string {
	var b strings.Builder
	b.WriteString(t.KeyPath)
	for _, c := range t.Columns {
		b.WriteByte('|')
		b.WriteString(c.Name)
		b.WriteByte(':')
		b.WriteString(c.ValueType)
	}
	return b.String()
}

// valueType classifies a single plist item the way the schema extractor's
// original _GetPropertyListValueType did. Types it has never seen fall back
// to "unknown" rather than aborting the whole walk — a schema extractor is
// best-effort by nature, run over arbitrary third-party plists.
func valueType(item any) string {
	switch v := item.(type) {
	case nil:
		return "null"
	case []byte:
		return "data"
	case plist.UID:
		return "UID"
	case time.Time:
		return "date"
	case map[string]any:
		if _, ok := karchive.IsUID(v); ok {
			return "UID"
		}
		return "dict"
	case float64, float32:
		return "real"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		_ = v
		return "unknown"
	}
}
