package migrator

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"reflect"

	"github.com/pkg/errors"
)

// SchemaEditor executes planned operations against a database and tracks
// which migrations have been applied. The engine hands it operations one at
// a time, in the order the planner produced; it makes no guarantee about
// concurrent application.
type SchemaEditor interface {
	Setup() error
	StoreMigration(appName string, migrationName string) error
	HasMigration(appName string, migrationName string) (bool, error)
	RemoveMigration(appName string, migrationName string) error

	Execute(ctx context.Context, query string, args ...any) (sql.Result, error)

	CreateModel(model *ModelDescriptor) error
	DropModel(model *ModelDescriptor) error
	AddField(model *ModelDescriptor, field FieldDescriptor) error
	RemoveField(model *ModelDescriptor, field FieldDescriptor) error
}

var schemaEditors = make(map[reflect.Type]func(db *sql.DB) SchemaEditor)

// RegisterSchemaEditor registers a schema editor constructor for a database
// driver. The sqlite, mysql and postgres subpackages register themselves on
// import.
func RegisterSchemaEditor(d driver.Driver, fn func(db *sql.DB) SchemaEditor) {
	schemaEditors[reflect.TypeOf(d)] = fn
}

// GetSchemaEditor returns a schema editor for the database's driver.
func GetSchemaEditor(db *sql.DB) (SchemaEditor, error) {
	var t = reflect.TypeOf(db.Driver())
	var fn, ok = schemaEditors[t]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDriver, "%s", t)
	}
	return fn(db), nil
}
