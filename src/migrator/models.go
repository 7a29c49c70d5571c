package migrator

import (
	"encoding/json"

	"github.com/elliotchance/orderedmap/v2"
)

// Relation describes the target of a foreign key column.
//
// Model is the content type name of the target model and is what the
// dependency graph keys on; App, Table and Column carry enough information
// to render a REFERENCES clause and to resolve cross-migration dependencies
// without loading the target model.
type Relation struct {
	Model  string `json:"model"`
	App    string `json:"app,omitempty"`
	Table  string `json:"table,omitempty"`
	Column string `json:"column,omitempty"`
}

func (r *Relation) Equals(other *Relation) bool {
	if r == nil && other == nil {
		return true
	}
	if (r == nil) != (other == nil) {
		return false
	}
	return r.Model == other.Model &&
		r.App == other.App &&
		r.Table == other.Table &&
		r.Column == other.Column
}

// FieldDescriptor describes a single column of a model at a point in time.
type FieldDescriptor struct {
	Name     string    `json:"name"`
	Column   string    `json:"column"`
	Type     string    `json:"type"`
	Primary  bool      `json:"primary,omitempty"`
	Auto     bool      `json:"auto,omitempty"`
	Nullable bool      `json:"nullable,omitempty"`
	Unique   bool      `json:"unique,omitempty"`
	Rel      *Relation `json:"relation,omitempty"`
}

func (f *FieldDescriptor) Equals(other *FieldDescriptor) bool {
	if f == nil && other == nil {
		return true
	}
	if (f == nil) != (other == nil) {
		return false
	}
	if f.Name != other.Name {
		return false
	}
	if f.Column != other.Column {
		return false
	}
	if f.Type != other.Type {
		return false
	}
	if f.Primary != other.Primary {
		return false
	}
	if f.Auto != other.Auto {
		return false
	}
	if f.Nullable != other.Nullable {
		return false
	}
	if f.Unique != other.Unique {
		return false
	}
	return f.Rel.Equals(other.Rel)
}

// ModelDescriptor describes the shape of one table, either extracted from the
// currently registered models or loaded from a migration file's snapshot.
//
// Descriptors are never mutated after construction; diffing and cycle
// breaking always produce fresh copies.
type ModelDescriptor struct {
	// App is the label of the application that owns the model.
	App string

	// Table is the database table name; it is the key used for diffing.
	Table string

	// Model is the content type name of the model, used for node identity in
	// the operation graph. The planner never inspects it beyond equality.
	Model string

	// Fields is an ordered map of column name to field descriptor. The order
	// is the declared field order and is preserved through serialization.
	Fields *orderedmap.OrderedMap[string, FieldDescriptor]
}

type serializableModelDescriptor struct {
	App    string            `json:"app"`
	Table  string            `json:"table"`
	Model  string            `json:"model"`
	Fields []FieldDescriptor `json:"fields"`
}

func (m *ModelDescriptor) MarshalJSON() ([]byte, error) {
	var s = serializableModelDescriptor{
		App:    m.App,
		Table:  m.Table,
		Model:  m.Model,
		Fields: m.FieldList(),
	}
	return json.Marshal(s)
}

func (m *ModelDescriptor) UnmarshalJSON(data []byte) error {
	var s serializableModelDescriptor
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	m.App = s.App
	m.Table = s.Table
	m.Model = s.Model
	m.Fields = orderedmap.NewOrderedMap[string, FieldDescriptor]()
	for _, f := range s.Fields {
		m.Fields.Set(f.Column, f)
	}
	return nil
}

// Field returns the field descriptor for the given column name.
func (m *ModelDescriptor) Field(column string) (FieldDescriptor, bool) {
	if m.Fields == nil {
		return FieldDescriptor{}, false
	}
	return m.Fields.Get(column)
}

// FieldList returns the fields in declared order.
func (m *ModelDescriptor) FieldList() []FieldDescriptor {
	if m.Fields == nil {
		return nil
	}
	var fields = make([]FieldDescriptor, 0, m.Fields.Len())
	for head := m.Fields.Front(); head != nil; head = head.Next() {
		fields = append(fields, head.Value)
	}
	return fields
}

// Equals reports whether two descriptors describe the same table shape.
// Field order is not significant; two descriptors are equal when their
// field sets, keyed by column name, are equal.
func (m *ModelDescriptor) Equals(other *ModelDescriptor) bool {
	if m == nil && other == nil {
		return true
	}
	if (m == nil) != (other == nil) {
		return false
	}
	if m.Table != other.Table {
		return false
	}
	if m.Fields.Len() != other.Fields.Len() {
		return false
	}
	for head := m.Fields.Front(); head != nil; head = head.Next() {
		var otherField, ok = other.Fields.Get(head.Key)
		if !ok {
			return false
		}
		var field = head.Value
		if !field.Equals(&otherField) {
			return false
		}
	}
	return true
}

// NewModelDescriptorOf builds a descriptor from plain values. It is mostly
// useful for tests and for reconstructing a descriptor from an operation.
func NewModelDescriptorOf(app, table, model string, fields ...FieldDescriptor) *ModelDescriptor {
	var m = &ModelDescriptor{
		App:    app,
		Table:  table,
		Model:  model,
		Fields: orderedmap.NewOrderedMap[string, FieldDescriptor](),
	}
	for _, f := range fields {
		m.Fields.Set(f.Column, f)
	}
	return m
}
