package models

import (
	"encoding/json"
	"fmt"
)

// Row is a read snapshot of one record in a source table.
type Row struct {
	ID     int
	Fields map[string]Value
}

// Lookup returns the named cell and whether the row carries it at all.
func (r Row) Lookup(name string) (Value, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Value returns the named cell, or null when the row does not carry it.
func (r Row) Value(name string) Value {
	return r.Fields[name]
}

// UnmarshalJSON decodes a row as returned with user_field_names=true.
// The id is lifted out of the field map; order is dropped.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	idRaw, ok := raw["id"]
	if !ok {
		return fmt.Errorf("row without id")
	}
	if err := json.Unmarshal(idRaw, &r.ID); err != nil {
		return fmt.Errorf("decode row id: %w", err)
	}

	r.Fields = make(map[string]Value, len(raw))
	for name, msg := range raw {
		if name == "id" || name == "order" {
			continue
		}
		var v Value
		if err := json.Unmarshal(msg, &v); err != nil {
			return fmt.Errorf("row %d field %q: %w", r.ID, name, err)
		}
		r.Fields[name] = v
	}

	return nil
}
