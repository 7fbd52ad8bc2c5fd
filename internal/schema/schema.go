// Package schema holds the fixed database catalog that is serialized into LLM prompts.
//
// The catalog is not introspected from the live database. If the live schema
// drifts from it, generated queries fail and the correction loop sees the error.
package schema

import (
	"fmt"
	"strings"
)

// Catalog describes the tables the assistant is allowed to talk about.
type Catalog struct {
	Database string  `json:"database"`
	Tables   []Table `json:"tables"`
}

// Table represents a database table and its structure.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Column represents a table column.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Note string `json:"note,omitempty"`
}

// Table returns the named table, matched case-insensitively.
func (c *Catalog) Table(name string) (Table, bool) {
	for _, t := range c.Tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Table{}, false
}

// TableNames returns the table names in catalog order.
func (c *Catalog) TableNames() []string {
	names := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		names[i] = t.Name
	}
	return names
}

// ToText serializes every table with typed columns, for the generation prompt.
func (c *Catalog) ToText() string {
	if len(c.Tables) == 0 {
		return "(no tables found)"
	}

	var sb strings.Builder
	for i, table := range c.Tables {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(tableToText(table))
	}
	return sb.String()
}

// Excerpt serializes only the named tables, in the order given.
// Unknown names are skipped.
func (c *Catalog) Excerpt(tables ...string) string {
	var sb strings.Builder
	for _, name := range tables {
		t, ok := c.Table(name)
		if !ok {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(tableToText(t))
	}
	return sb.String()
}

// Overview renders one line per table listing column names only.
func (c *Catalog) Overview() string {
	var sb strings.Builder
	for _, t := range c.Tables {
		cols := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cols[i] = col.Name
			if col.Note != "" {
				cols[i] += " (" + col.Note + ")"
			}
		}
		sb.WriteString(fmt.Sprintf("- %s table (%s)\n", t.Name, strings.Join(cols, ", ")))
	}
	return sb.String()
}

func tableToText(t Table) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s table**:\n", t.Name))
	for _, col := range t.Columns {
		sb.WriteString(fmt.Sprintf("- %s (%s)", col.Name, col.Type))
		if col.Note != "" {
			sb.WriteString(fmt.Sprintf(" // %s", col.Note))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
