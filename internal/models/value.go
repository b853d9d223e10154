package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindBool
	KindChoice
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindChoice:
		return "choice"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Choice is the value of a single-select cell.
type Choice struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
	Color string `json:"color,omitempty"`
}

// Value is a single cell of a row. Exactly one variant is populated,
// selected by Kind. The zero Value is null.
type Value struct {
	kind    Kind
	text    string
	number  float64
	boolean bool
	choice  Choice
	list    []Value
	object  map[string]Value
}

func Null() Value                     { return Value{} }
func Text(s string) Value             { return Value{kind: KindText, text: s} }
func Number(f float64) Value          { return Value{kind: KindNumber, number: f} }
func Bool(b bool) Value               { return Value{kind: KindBool, boolean: b} }
func ChoiceValue(c Choice) Value      { return Value{kind: KindChoice, choice: c} }
func List(items ...Value) Value       { return Value{kind: KindList, list: items} }
func Object(m map[string]Value) Value { return Value{kind: KindObject, object: m} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) Text() (string, bool)             { return v.text, v.kind == KindText }
func (v Value) Number() (float64, bool)          { return v.number, v.kind == KindNumber }
func (v Value) Bool() (bool, bool)               { return v.boolean, v.kind == KindBool }
func (v Value) Choice() (Choice, bool)           { return v.choice, v.kind == KindChoice }
func (v Value) List() ([]Value, bool)            { return v.list, v.kind == KindList }
func (v Value) Object() (map[string]Value, bool) { return v.object, v.kind == KindObject }

// IsBlank reports whether the cell holds nothing a user would see:
// null, empty text, or an empty list.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.text == ""
	case KindList:
		return len(v.list) == 0
	case KindObject:
		return len(v.object) == 0
	default:
		return false
	}
}

// Truthy follows the loose truthiness of the configuration table:
// non-empty text and non-zero numbers count as true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindNumber:
		return v.number != 0
	case KindChoice:
		return true
	default:
		return !v.IsBlank()
	}
}

// String returns the display form of the cell.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindChoice:
		return v.choice.Value
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, item := range v.list {
			parts = append(parts, item.String())
		}
		return strings.Join(parts, ", ")
	case KindObject:
		for _, key := range []string{"value", "name", "url"} {
			if inner, ok := v.object[key]; ok {
				return inner.String()
			}
		}
		return ""
	default:
		return ""
	}
}

// TemplateValue converts the cell into plain Go values for template execution.
// Null becomes the empty string so that blank cells render as nothing.
func (v Value) TemplateValue() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.number
	case KindBool:
		return v.boolean
	case KindChoice:
		return v.choice.Value
	case KindList:
		out := make([]any, 0, len(v.list))
		for _, item := range v.list {
			out = append(out, item.TemplateValue())
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.object))
		for k, item := range v.object {
			out[k] = item.TemplateValue()
		}
		return out
	default:
		return ""
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	decoded, err := fromJSON(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		return json.Marshal(v.number)
	case KindBool:
		return json.Marshal(v.boolean)
	case KindChoice:
		return json.Marshal(v.choice)
	case KindList:
		return json.Marshal(v.list)
	case KindObject:
		return json.Marshal(v.object)
	default:
		return []byte("null"), nil
	}
}

func fromJSON(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return Text(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("decode number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			v, err := fromJSON(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return List(items...), nil
	case map[string]any:
		if c, ok := asChoice(t); ok {
			return ChoiceValue(c), nil
		}
		obj := make(map[string]Value, len(t))
		for k, item := range t {
			v, err := fromJSON(item)
			if err != nil {
				return Value{}, fmt.Errorf("decode %q: %w", k, err)
			}
			obj[k] = v
		}
		return Object(obj), nil
	default:
		return Value{}, fmt.Errorf("unsupported json value %T", raw)
	}
}

// asChoice recognises single-select cells, which always carry id, value and color.
func asChoice(m map[string]any) (Choice, bool) {
	if len(m) != 3 {
		return Choice{}, false
	}
	id, ok := m["id"].(json.Number)
	if !ok {
		return Choice{}, false
	}
	value, ok := m["value"].(string)
	if !ok {
		return Choice{}, false
	}
	color, ok := m["color"].(string)
	if !ok {
		return Choice{}, false
	}
	n, err := id.Int64()
	if err != nil {
		return Choice{}, false
	}
	return Choice{ID: int(n), Value: value, Color: color}, true
}
