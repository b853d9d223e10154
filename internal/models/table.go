package models

type FieldType string

const (
	FieldTypeSingleSelect FieldType = "single_select"
	FieldTypeBoolean      FieldType = "boolean"
	FieldTypeText         FieldType = "text"
	FieldTypeFile         FieldType = "file"
)

// StatusOption is one entry of a single-select field's option list.
type StatusOption struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
	Color string `json:"color"`
}

type Field struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Type          FieldType      `json:"type"`
	Primary       bool           `json:"primary"`
	SelectOptions []StatusOption `json:"select_options,omitempty"`
}

// Table is the schema of a source table.
type Table struct {
	ID     string
	Fields []Field
}

func (t *Table) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}
	return names
}

func (t *Table) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
