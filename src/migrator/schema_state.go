package migrator

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/pkg/errors"
)

// SchemaState is an in-memory view of a schema, built by applying operations
// in order. The engine's fake editor and the planner tests use it to check
// that a generated operation list is applicable, and that applying it
// forwards and then backwards restores the previous schema exactly.
type SchemaState struct {
	App    string
	models *orderedmap.OrderedMap[string, *ModelDescriptor]
}

func NewSchemaState(app string) *SchemaState {
	return &SchemaState{
		App:    app,
		models: orderedmap.NewOrderedMap[string, *ModelDescriptor](),
	}
}

// Model returns the descriptor for the given table.
func (s *SchemaState) Model(table string) (*ModelDescriptor, bool) {
	return s.models.Get(table)
}

// Models returns all tables in creation order.
func (s *SchemaState) Models() []*ModelDescriptor {
	var models = make([]*ModelDescriptor, 0, s.models.Len())
	for head := s.models.Front(); head != nil; head = head.Next() {
		models = append(models, head.Value)
	}
	return models
}

// Apply applies a single operation forwards.
func (s *SchemaState) Apply(op Operation) error {
	switch op.Type {
	case OperationCreateModel:
		if _, ok := s.models.Get(op.Table); ok {
			return errors.Errorf("table %q already exists", op.Table)
		}
		s.models.Set(op.Table, NewModelDescriptorOf(s.App, op.Table, op.Model, op.Fields...))

	case OperationAddField:
		var model, ok = s.models.Get(op.Table)
		if !ok {
			return errors.Errorf("table %q does not exist", op.Table)
		}
		if _, ok := model.Field(op.Field.Column); ok {
			return errors.Errorf("column %q already exists on table %q", op.Field.Column, op.Table)
		}
		s.models.Set(op.Table, NewModelDescriptorOf(
			model.App, model.Table, model.Model,
			append(model.FieldList(), *op.Field)...,
		))

	case OperationRemoveField:
		var model, ok = s.models.Get(op.Table)
		if !ok {
			return errors.Errorf("table %q does not exist", op.Table)
		}
		if _, ok := model.Field(op.Field.Column); !ok {
			return errors.Errorf("column %q does not exist on table %q", op.Field.Column, op.Table)
		}
		var fields = make([]FieldDescriptor, 0, model.Fields.Len()-1)
		for _, f := range model.FieldList() {
			if f.Column != op.Field.Column {
				fields = append(fields, f)
			}
		}
		s.models.Set(op.Table, NewModelDescriptorOf(
			model.App, model.Table, model.Model, fields...,
		))

	case OperationRemoveModel:
		if _, ok := s.models.Get(op.Table); !ok {
			return errors.Errorf("table %q does not exist", op.Table)
		}
		s.models.Delete(op.Table)

	default:
		return errors.Errorf("unknown operation type %s", op.Type)
	}
	return nil
}

// Unapply applies a single operation backwards. Every operation carries the
// data it needs to be reversed, so no other operation is consulted.
func (s *SchemaState) Unapply(op Operation) error {
	switch op.Type {
	case OperationCreateModel:
		return s.Apply(Operation{Type: OperationRemoveModel, Table: op.Table, Model: op.Model, Fields: op.Fields})
	case OperationAddField:
		return s.Apply(Operation{Type: OperationRemoveField, Table: op.Table, Model: op.Model, Field: op.Field})
	case OperationRemoveField:
		return s.Apply(Operation{Type: OperationAddField, Table: op.Table, Model: op.Model, Field: op.Field})
	case OperationRemoveModel:
		return s.Apply(Operation{Type: OperationCreateModel, Table: op.Table, Model: op.Model, Fields: op.Fields})
	}
	return errors.Errorf("unknown operation type %s", op.Type)
}
