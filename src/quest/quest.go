// Package quest creates and drops database tables for tests. It extracts
// descriptors from the given models and pushes them through the schema editor
// registered for the connection's driver.
package quest

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/Nigel2392/go-django-migrator/src/migrator"
	"github.com/Nigel2392/go-django/src/core/attrs"
)

type DBTables struct {
	tables []*migrator.ModelDescriptor
	schema migrator.SchemaEditor
	t      *testing.T
}

func Table(t *testing.T, appName string, db *sql.DB, models ...attrs.Definer) *DBTables {
	if len(models) == 0 {
		panic("No model provided to Table()")
	}

	var tables = &DBTables{t: t}
	var schemaEditor, err = migrator.GetSchemaEditor(db)
	if err != nil {
		tables.fatalf("Failed setup SchemaEditor: %v", err)
		return nil
	}

	tables.tables = make([]*migrator.ModelDescriptor, len(models))
	for i, m := range models {
		tables.tables[i] = migrator.NewModelDescriptor(appName, m)
	}
	tables.schema = schemaEditor
	return tables
}

func (t *DBTables) fatal(args ...interface{}) {
	if t.t == nil {
		panic(fmt.Sprint(args...))
	}
	t.t.Fatal(args...)
}

func (t *DBTables) fatalf(format string, args ...interface{}) {
	if t.t == nil {
		panic(fmt.Sprintf(format, args...))
	}
	t.t.Fatalf(format, args...)
}

func (t *DBTables) Create() {
	if t.schema == nil {
		t.fatal("SchemaEditor is not initialized")
		return
	}

	for _, table := range t.tables {
		if t.t != nil {
			t.t.Logf("Creating table: %s", table.Table)
		} else {
			fmt.Printf("Creating table: %s\n", table.Table)
		}

		if err := t.schema.CreateModel(table); err != nil {
			t.fatalf("Failed to create table (%s): %v", table.Model, err)
			return
		}
	}
}

func (t *DBTables) Drop() {
	if t.schema == nil {
		t.fatal("SchemaEditor is not initialized")
	}

	// Drop in reverse creation order so referencing tables go first.
	for i := len(t.tables) - 1; i >= 0; i-- {
		var table = t.tables[i]
		if err := t.schema.DropModel(table); err != nil {
			t.fatalf("Failed to drop table (%s): %v", table.Model, err)
		}
	}
}
