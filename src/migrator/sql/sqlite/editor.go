// Package sqlite provides a SQLite implementation of the migrator.SchemaEditor interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Nigel2392/go-django-migrator/src/drivers"
	"github.com/Nigel2392/go-django-migrator/src/migrator"
	"github.com/jmoiron/sqlx"
)

var _ migrator.SchemaEditor = &SQLiteSchemaEditor{}

func init() {
	migrator.RegisterSchemaEditor(&drivers.DriverSQLite{}, func(db *sql.DB) migrator.SchemaEditor {
		return NewSQLiteSchemaEditor(db)
	})
}

const (
	createTableMigrations = `CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		app_name TEXT NOT NULL,
		migration_name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (app_name, migration_name)
	);`
	insertTableMigrations = `INSERT INTO migrations (app_name, migration_name) VALUES (?, ?);`
	deleteTableMigrations = `DELETE FROM migrations WHERE app_name = ? AND migration_name = ?;`
	selectTableMigrations = `SELECT COUNT(*) FROM migrations WHERE app_name = ? AND migration_name = ? LIMIT 1;`
)

type SQLiteSchemaEditor struct {
	db            *sqlx.DB
	tablesCreated bool
}

func NewSQLiteSchemaEditor(db *sql.DB) *SQLiteSchemaEditor {
	return &SQLiteSchemaEditor{db: sqlx.NewDb(db, drivers.DatabaseName(db))}
}

func (e *SQLiteSchemaEditor) Setup() error {
	if e.tablesCreated {
		return nil
	}
	if _, err := e.db.Exec(createTableMigrations); err != nil {
		return err
	}
	e.tablesCreated = true
	return nil
}

func (e *SQLiteSchemaEditor) StoreMigration(appName, migrationName string) error {
	_, err := e.db.Exec(insertTableMigrations, appName, migrationName)
	return err
}

func (e *SQLiteSchemaEditor) HasMigration(appName, migrationName string) (bool, error) {
	var count int
	if err := e.db.Get(&count, selectTableMigrations, appName, migrationName); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *SQLiteSchemaEditor) RemoveMigration(appName, migrationName string) error {
	_, err := e.db.Exec(deleteTableMigrations, appName, migrationName)
	return err
}

func (e *SQLiteSchemaEditor) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return e.db.ExecContext(ctx, query, args...)
}

func (e *SQLiteSchemaEditor) CreateModel(model *migrator.ModelDescriptor) error {
	var w strings.Builder
	w.WriteString("CREATE TABLE \"")
	w.WriteString(model.Table)
	w.WriteString("\" (")

	var written bool
	for _, col := range model.FieldList() {
		if written {
			w.WriteString(",\n")
		}
		w.WriteString("  ")
		WriteColumn(&w, col)
		written = true
	}
	w.WriteString("\n);")
	_, err := e.db.Exec(w.String())
	return err
}

func (e *SQLiteSchemaEditor) DropModel(model *migrator.ModelDescriptor) error {
	query := fmt.Sprintf("DROP TABLE %q;", model.Table)
	_, err := e.db.Exec(query)
	return err
}

func (e *SQLiteSchemaEditor) AddField(model *migrator.ModelDescriptor, field migrator.FieldDescriptor) error {
	var w strings.Builder
	w.WriteString("ALTER TABLE \"")
	w.WriteString(model.Table)
	w.WriteString("\" ADD COLUMN ")
	WriteColumn(&w, field)
	w.WriteString(";")
	_, err := e.db.Exec(w.String())
	return err
}

func (e *SQLiteSchemaEditor) RemoveField(model *migrator.ModelDescriptor, field migrator.FieldDescriptor) error {
	query := fmt.Sprintf("ALTER TABLE %q DROP COLUMN %q;", model.Table, field.Column)
	_, err := e.db.Exec(query)
	return err
}

func WriteColumn(w *strings.Builder, col migrator.FieldDescriptor) {
	w.WriteString("\"")
	w.WriteString(col.Column)
	w.WriteString("\" ")

	// AUTOINCREMENT only works on an INTEGER PRIMARY KEY column.
	if col.Primary && col.Auto {
		w.WriteString("INTEGER PRIMARY KEY AUTOINCREMENT")
		return
	}

	w.WriteString(migrator.GetFieldType(&drivers.DriverSQLite{}, &col))
	if col.Primary {
		w.WriteString(" PRIMARY KEY")
	}
	if col.Nullable {
		w.WriteString(" NULL")
	} else {
		w.WriteString(" NOT NULL")
	}
	if col.Unique {
		w.WriteString(" UNIQUE")
	}
	if col.Rel != nil {
		w.WriteString(" REFERENCES \"")
		w.WriteString(col.Rel.Table)
		w.WriteString("\"(\"")
		w.WriteString(col.Rel.Column)
		w.WriteString("\")")
	}
}
