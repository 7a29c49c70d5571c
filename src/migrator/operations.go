package migrator

import (
	"encoding/json"
	"fmt"
)

type OperationType int

const (
	OperationNone OperationType = iota
	OperationCreateModel
	OperationAddField
	OperationRemoveField
	OperationRemoveModel
)

var operationTypeNames = map[OperationType]string{
	OperationCreateModel: "create_model",
	OperationAddField:    "add_field",
	OperationRemoveField: "remove_field",
	OperationRemoveModel: "remove_model",
}

func (t OperationType) String() string {
	if s, ok := operationTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("unknown_operation(%d)", int(t))
}

func (t OperationType) MarshalJSON() ([]byte, error) {
	var s, ok = operationTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown operation type %d", int(t))
	}
	return json.Marshal(s)
}

func (t *OperationType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for typ, name := range operationTypeNames {
		if name == s {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown operation type %q", s)
}

// Operation is a single, self-contained schema change.
//
// The set of operation kinds is closed; every consumer switches exhaustively
// over Type. Each operation carries enough information to be applied
// backwards without consulting any other operation: RemoveField keeps the
// removed field descriptor and RemoveModel keeps the full field list.
//
// Fields is set for CreateModel and RemoveModel, Field for AddField and
// RemoveField.
type Operation struct {
	Type   OperationType     `json:"type"`
	Table  string            `json:"table"`
	Model  string            `json:"model"`
	Fields []FieldDescriptor `json:"fields,omitempty"`
	Field  *FieldDescriptor  `json:"field,omitempty"`
}

// Clone returns a deep copy. The cycle breaker mutates field lists of
// CreateModel operations and must not alias the caller's slices.
func (op Operation) Clone() Operation {
	var c = op
	if op.Fields != nil {
		c.Fields = make([]FieldDescriptor, len(op.Fields))
		copy(c.Fields, op.Fields)
	}
	if op.Field != nil {
		var f = *op.Field
		c.Field = &f
	}
	return c
}

func newCreateModel(m *ModelDescriptor) Operation {
	return Operation{
		Type:   OperationCreateModel,
		Table:  m.Table,
		Model:  m.Model,
		Fields: m.FieldList(),
	}
}

func newRemoveModel(m *ModelDescriptor) Operation {
	return Operation{
		Type:   OperationRemoveModel,
		Table:  m.Table,
		Model:  m.Model,
		Fields: m.FieldList(),
	}
}

func newAddField(m *ModelDescriptor, field FieldDescriptor) Operation {
	return Operation{
		Type:  OperationAddField,
		Table: m.Table,
		Model: m.Model,
		Field: &field,
	}
}

func newRemoveField(m *ModelDescriptor, field FieldDescriptor) Operation {
	return Operation{
		Type:  OperationRemoveField,
		Table: m.Table,
		Model: m.Model,
		Field: &field,
	}
}
