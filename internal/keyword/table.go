// Package keyword matches incoming message text against an ordered table
// of trigger substrings and their canned responses.
package keyword

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry pairs a trigger substring with its response.
type Entry struct {
	Keyword  string
	Response string
}

// Table is an ordered keyword table. Order is the declaration order of the source mapping.
type Table []Entry

// UnmarshalYAML decodes a YAML mapping into a Table, keeping key order.
// Keywords must be lowercase: Match compares them against lowered text, so a
// keyword with upper-case letters could never fire.
func (t *Table) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		*t = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: keyword table must be a mapping of keyword to response", node.Line)
	}

	table := make(Table, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return fmt.Errorf("line %d: keyword must be a non-empty scalar", key.Line)
		}
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: response for keyword %q must be a scalar", value.Line, key.Value)
		}
		if key.Value != strings.ToLower(key.Value) {
			return fmt.Errorf("line %d: keyword %q must be lowercase", key.Line, key.Value)
		}
		table = append(table, Entry{Keyword: key.Value, Response: value.Value})
	}

	*t = table
	return nil
}

// Keywords returns the trigger substrings in table order.
func (t Table) Keywords() []string {
	keywords := make([]string, len(t))
	for i, e := range t {
		keywords[i] = e.Keyword
	}
	return keywords
}
