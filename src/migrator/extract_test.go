package migrator_test

import (
	"testing"

	"github.com/Nigel2392/go-django-migrator/src/migrator"
	testsql "github.com/Nigel2392/go-django-migrator/src/migrator/sql/testsql"
)

func TestNewModelDescriptor(t *testing.T) {
	var user = migrator.NewModelDescriptor("testsql", &testsql.User{})

	if user.App != "testsql" {
		t.Errorf("expected app 'testsql', got %q", user.App)
	}
	if user.Table == "" {
		t.Errorf("expected a table name")
	}
	if user.Model == "" {
		t.Errorf("expected a model name")
	}

	var fields = user.FieldList()
	if len(fields) != 4 {
		t.Fatalf("expected 4 fields, got %d", len(fields))
	}
	if !fields[0].Primary {
		t.Errorf("expected the primary field first, got %+v", fields[0])
	}
	if fields[0].Type != "int64" {
		t.Errorf("expected an int64 primary key, got %q", fields[0].Type)
	}
}

func TestNewModelDescriptorForeignKey(t *testing.T) {
	var (
		user = migrator.NewModelDescriptor("testsql", &testsql.User{})
		todo = migrator.NewModelDescriptor("testsql", &testsql.Todo{})
	)

	var fk *migrator.FieldDescriptor
	for _, field := range todo.FieldList() {
		if field.Rel != nil {
			var f = field
			fk = &f
			break
		}
	}
	if fk == nil {
		t.Fatalf("expected a foreign key field on %v", todo.FieldList())
	}

	if fk.Column != "user_id" {
		t.Errorf("expected column 'user_id', got %q", fk.Column)
	}
	if fk.Rel.Model != user.Model {
		t.Errorf("expected relation to %q, got %q", user.Model, fk.Rel.Model)
	}
	if fk.Rel.Table != user.Table {
		t.Errorf("expected relation to table %q, got %q", user.Table, fk.Rel.Table)
	}
	if fk.Rel.App != "testsql" {
		t.Errorf("expected relation app 'testsql', got %q", fk.Rel.App)
	}

	// The column stores the referenced primary key's value, not the struct.
	if fk.Type != "int64" {
		t.Errorf("expected an int64 foreign key column, got %q", fk.Type)
	}
}

func TestNewModelDescriptorIsStable(t *testing.T) {
	var first = migrator.NewModelDescriptor("testsql", &testsql.Profile{})
	var second = migrator.NewModelDescriptor("testsql", &testsql.Profile{})

	if !first.Equals(second) {
		t.Errorf("expected identical descriptors for identical models")
	}

	var firstFields, secondFields = first.FieldList(), second.FieldList()
	for i := range firstFields {
		if firstFields[i].Column != secondFields[i].Column {
			t.Errorf("expected stable field order, got %v and %v", firstFields, secondFields)
		}
	}
}
