package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	payload := `{
		"id": 7,
		"order": "1.00000000000000000000",
		"Email Status": {"id": 3001, "value": "Queued", "color": "blue"},
		"Recipient": "a@x.com, b@x.com",
		"Amount": "12.50",
		"Count": 3,
		"Paid": true,
		"Owner": [{"id": 1, "value": "Jane Doe"}],
		"Attachment": [{"url": "https://files.example.com/t.txt", "name": "t.txt", "visible_name": "template"}],
		"Notes": null
	}`

	var row Row
	require.NoError(t, json.Unmarshal([]byte(payload), &row))

	require.Equal(t, 7, row.ID)
	_, hasOrder := row.Lookup("order")
	require.False(t, hasOrder)

	status, ok := row.Value("Email Status").Choice()
	require.True(t, ok)
	assert.Equal(t, Choice{ID: 3001, Value: "Queued", Color: "blue"}, status)

	recipient, ok := row.Value("Recipient").Text()
	require.True(t, ok)
	assert.Equal(t, "a@x.com, b@x.com", recipient)

	count, ok := row.Value("Count").Number()
	require.True(t, ok)
	assert.Equal(t, 3.0, count)

	paid, ok := row.Value("Paid").Bool()
	require.True(t, ok)
	assert.True(t, paid)

	owner, ok := row.Value("Owner").List()
	require.True(t, ok)
	require.Len(t, owner, 1)
	assert.Equal(t, KindObject, owner[0].Kind())
	assert.Equal(t, "Jane Doe", row.Value("Owner").String())

	files, ok := row.Value("Attachment").List()
	require.True(t, ok)
	file, ok := files[0].Object()
	require.True(t, ok)
	url, _ := file["url"].Text()
	assert.Equal(t, "https://files.example.com/t.txt", url)

	notes, present := row.Lookup("Notes")
	require.True(t, present)
	assert.Equal(t, KindNull, notes.Kind())
	assert.True(t, notes.IsBlank())

	assert.Equal(t, KindNull, row.Value("Missing").Kind())
}

func TestRow_UnmarshalJSON_RequiresID(t *testing.T) {
	t.Parallel()

	var row Row
	err := json.Unmarshal([]byte(`{"Name": "x"}`), &row)

	require.Error(t, err)
}

func TestValue_CheckedAccessorsRejectOtherKinds(t *testing.T) {
	t.Parallel()

	v := Text("hello")

	_, ok := v.Number()
	assert.False(t, ok)
	_, ok = v.Choice()
	assert.False(t, ok)
	_, ok = v.List()
	assert.False(t, ok)
	_, ok = v.Bool()
	assert.False(t, ok)
	_, ok = v.Object()
	assert.False(t, ok)
}

func TestValue_Truthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value Value
		want  bool
	}{
		{name: "null", value: Null(), want: false},
		{name: "true", value: Bool(true), want: true},
		{name: "false", value: Bool(false), want: false},
		{name: "empty text", value: Text(""), want: false},
		{name: "text", value: Text("yes"), want: true},
		{name: "zero", value: Number(0), want: false},
		{name: "number", value: Number(1), want: true},
		{name: "empty list", value: List(), want: false},
		{name: "choice", value: ChoiceValue(Choice{ID: 1, Value: "x"}), want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.value.Truthy())
		})
	}
}

func TestValue_StringAndTemplateValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Null().String())
	assert.Equal(t, "12.5", Number(12.5).String())
	assert.Equal(t, "Sent", ChoiceValue(Choice{ID: 2, Value: "Sent"}).String())
	assert.Equal(t, "a, b", List(Text("a"), Text("b")).String())

	assert.Equal(t, "", Null().TemplateValue())
	assert.Equal(t, "Sent", ChoiceValue(Choice{ID: 2, Value: "Sent"}).TemplateValue())
	assert.Equal(t, []any{"a", 1.0}, List(Text("a"), Number(1)).TemplateValue())
	assert.Equal(t,
		map[string]any{"url": "https://x"},
		Object(map[string]Value{"url": Text("https://x")}).TemplateValue(),
	)
}

func TestValue_MarshalJSON(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(map[string]Value{
		"a": Text("x"),
		"b": Null(),
		"c": ChoiceValue(Choice{ID: 4, Value: "Queued", Color: "red"}),
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":null,"c":{"id":4,"value":"Queued","color":"red"}}`, string(out))
}

func TestTable_Field(t *testing.T) {
	t.Parallel()

	table := &Table{ID: "10", Fields: []Field{
		{ID: 1, Name: "Email", Type: FieldTypeText},
		{ID: 2, Name: "Status", Type: FieldTypeSingleSelect, SelectOptions: []StatusOption{{ID: 5, Value: "Queued"}}},
	}}

	assert.Equal(t, []string{"Email", "Status"}, table.FieldNames())

	f, ok := table.Field("Status")
	require.True(t, ok)
	assert.Equal(t, FieldTypeSingleSelect, f.Type)

	_, ok = table.Field("status")
	assert.False(t, ok)
}
