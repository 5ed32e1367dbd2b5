// Package schema describes the expected layout of the phishing feature dataset.
package schema

import (
	_ "embed"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var defaultSchema []byte

// Column is a named, typed dataset column.
type Column struct {
	Name string
	Type string
}

// Schema is the expected dataset layout.
type Schema struct {
	Columns          []Column
	NumericalColumns []string
}

type document struct {
	Columns          []map[string]string `yaml:"columns"`
	NumericalColumns []string            `yaml:"numerical_columns"`
}

// Default returns the embedded phishing dataset schema.
func Default() (*Schema, error) {
	return Parse(defaultSchema)
}

// Load reads a schema file. An empty path returns the default schema.
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read schema %s", path)
	}

	return Parse(data)
}

// Parse decodes a schema document. Columns are listed as single-key mappings of name to type.
func Parse(data []byte) (*Schema, error) {
	var doc document
	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode schema")
	}

	sch := &Schema{NumericalColumns: doc.NumericalColumns}
	for i, col := range doc.Columns {
		if len(col) != 1 {
			return nil, errors.Errorf("schema column %d must have exactly one name", i)
		}
		for name, typ := range col {
			sch.Columns = append(sch.Columns, Column{Name: name, Type: typ})
		}
	}
	if len(sch.Columns) == 0 {
		return nil, errors.New("schema has no columns")
	}

	return sch, nil
}

// ColumnNames returns the column names in schema order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}

	return names
}
