package models

type FilterMode string

const (
	FilterModeAnd FilterMode = "AND"
	FilterModeOr  FilterMode = "OR"
)

// Filter types understood by the row store.
const (
	FilterBoolean           = "boolean"
	FilterSingleSelectEqual = "single_select_equal"
	FilterEmpty             = "empty"
)

type Filter struct {
	Field string `json:"field"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// RowQuery selects rows of one table. An empty Include returns every field.
type RowQuery struct {
	Include []string
	Filters []Filter
	Mode    FilterMode
}
