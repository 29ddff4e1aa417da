package schema

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type yamlColumn struct {
	Name      string `yaml:"name"`
	ValueType string `yaml:"value_type"`
}

type yamlTable struct {
	Table   string       `yaml:"table"`
	Columns []yamlColumn `yaml:"columns"`
}

// FormatYAML renders tables as a sequence of "---"-delimited YAML
// documents, one per table, matching the schema extractor's original
// table:/columns: layout.
func FormatYAML(tables []Table) (string, error) {
	sorted := make([]Table, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].KeyPath < sorted[j].KeyPath })

	var b strings.Builder
	b.WriteString("# PList-kb property list schema.\n---\n")

	for _, t := range sorted {
		yt := yamlTable{Table: t.KeyPath}
		for _, c := range t.Columns {
			yt.Columns = append(yt.Columns, yamlColumn{Name: c.Name, ValueType: c.ValueType})
		}

		doc, err := yaml.Marshal(yt)
		if err != nil {
			return "", err
		}
		b.Write(doc)
		b.WriteString("---\n")
	}

	return b.String(), nil
}
