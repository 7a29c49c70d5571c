package testsql

import (
	"context"
	"database/sql"

	"github.com/Nigel2392/go-django-migrator/src/migrator"
)

type SQL struct {
	SQL    string
	Params []any
}

type Action struct {
	Type  migrator.OperationType
	Model *migrator.ModelDescriptor
	Field migrator.FieldDescriptor
}

// TestSchemaEditor records every action it is asked to perform and mirrors
// the resulting schema in an in-memory SchemaState so tests can assert the
// final table shapes.
type TestSchemaEditor struct {
	SetupCalled      bool
	StoredMigrations map[string]map[string]struct{}
	RawSQL           []SQL
	Actions          []Action
	State            *migrator.SchemaState
}

func NewTestSchemaEditor() *TestSchemaEditor {
	return &TestSchemaEditor{
		RawSQL:           make([]SQL, 0),
		Actions:          make([]Action, 0),
		StoredMigrations: make(map[string]map[string]struct{}),
		State:            migrator.NewSchemaState(""),
	}
}

func (t *TestSchemaEditor) Setup() error {
	t.SetupCalled = true
	return nil
}

func (t *TestSchemaEditor) StoreMigration(appName, migrationName string) error {
	if t.StoredMigrations == nil {
		t.StoredMigrations = make(map[string]map[string]struct{})
	}
	if _, ok := t.StoredMigrations[appName]; !ok {
		t.StoredMigrations[appName] = make(map[string]struct{})
	}
	t.StoredMigrations[appName][migrationName] = struct{}{}
	return nil
}

func (t *TestSchemaEditor) HasMigration(appName, migrationName string) (bool, error) {
	if t.StoredMigrations == nil {
		return false, nil
	}
	if _, ok := t.StoredMigrations[appName]; !ok {
		return false, nil
	}
	var _, ok = t.StoredMigrations[appName][migrationName]
	return ok, nil
}

func (t *TestSchemaEditor) RemoveMigration(appName, migrationName string) error {
	if t.StoredMigrations == nil {
		return nil
	}
	if _, ok := t.StoredMigrations[appName]; !ok {
		return nil
	}
	delete(t.StoredMigrations[appName], migrationName)
	if len(t.StoredMigrations[appName]) == 0 {
		delete(t.StoredMigrations, appName)
	}
	return nil
}

func (t *TestSchemaEditor) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	t.RawSQL = append(t.RawSQL, SQL{SQL: query, Params: args})
	return nil, nil
}

func (t *TestSchemaEditor) CreateModel(model *migrator.ModelDescriptor) error {
	t.Actions = append(t.Actions, Action{Type: migrator.OperationCreateModel, Model: model})
	return t.State.Apply(migrator.Operation{
		Type:   migrator.OperationCreateModel,
		Table:  model.Table,
		Model:  model.Model,
		Fields: model.FieldList(),
	})
}

func (t *TestSchemaEditor) DropModel(model *migrator.ModelDescriptor) error {
	t.Actions = append(t.Actions, Action{Type: migrator.OperationRemoveModel, Model: model})
	return t.State.Apply(migrator.Operation{
		Type:   migrator.OperationRemoveModel,
		Table:  model.Table,
		Model:  model.Model,
		Fields: model.FieldList(),
	})
}

func (t *TestSchemaEditor) AddField(model *migrator.ModelDescriptor, field migrator.FieldDescriptor) error {
	t.Actions = append(t.Actions, Action{Type: migrator.OperationAddField, Model: model, Field: field})
	return t.State.Apply(migrator.Operation{
		Type:  migrator.OperationAddField,
		Table: model.Table,
		Model: model.Model,
		Field: &field,
	})
}

func (t *TestSchemaEditor) RemoveField(model *migrator.ModelDescriptor, field migrator.FieldDescriptor) error {
	t.Actions = append(t.Actions, Action{Type: migrator.OperationRemoveField, Model: model, Field: field})
	return t.State.Apply(migrator.Operation{
		Type:  migrator.OperationRemoveField,
		Table: model.Table,
		Model: model.Model,
		Field: &field,
	})
}
