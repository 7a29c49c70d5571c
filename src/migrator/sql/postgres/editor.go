// Package postgres provides a PostgreSQL implementation of the migrator.SchemaEditor interface.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Nigel2392/go-django-migrator/src/drivers"
	"github.com/Nigel2392/go-django-migrator/src/migrator"
	"github.com/jmoiron/sqlx"
)

var _ migrator.SchemaEditor = &PostgresSchemaEditor{}

func init() {
	migrator.RegisterSchemaEditor(&drivers.DriverPostgres{}, func(db *sql.DB) migrator.SchemaEditor {
		return NewPostgresSchemaEditor(db)
	})
}

const (
	createTableMigrations = `CREATE TABLE IF NOT EXISTS migrations (
		id BIGSERIAL PRIMARY KEY,
		app_name TEXT NOT NULL,
		migration_name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (app_name, migration_name)
	);`
	insertTableMigrations = `INSERT INTO migrations (app_name, migration_name) VALUES (?, ?);`
	deleteTableMigrations = `DELETE FROM migrations WHERE app_name = ? AND migration_name = ?;`
	selectTableMigrations = `SELECT COUNT(*) FROM migrations WHERE app_name = ? AND migration_name = ? LIMIT 1;`
)

type PostgresSchemaEditor struct {
	db            *sqlx.DB
	tablesCreated bool
}

func NewPostgresSchemaEditor(db *sql.DB) *PostgresSchemaEditor {
	return &PostgresSchemaEditor{db: sqlx.NewDb(db, drivers.DatabaseName(db))}
}

func (e *PostgresSchemaEditor) Setup() error {
	if e.tablesCreated {
		return nil
	}
	if _, err := e.db.Exec(createTableMigrations); err != nil {
		return err
	}
	e.tablesCreated = true
	return nil
}

func (e *PostgresSchemaEditor) StoreMigration(appName, migrationName string) error {
	_, err := e.db.Exec(e.db.Rebind(insertTableMigrations), appName, migrationName)
	return err
}

func (e *PostgresSchemaEditor) HasMigration(appName, migrationName string) (bool, error) {
	var count int
	if err := e.db.Get(&count, e.db.Rebind(selectTableMigrations), appName, migrationName); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *PostgresSchemaEditor) RemoveMigration(appName, migrationName string) error {
	_, err := e.db.Exec(e.db.Rebind(deleteTableMigrations), appName, migrationName)
	return err
}

func (e *PostgresSchemaEditor) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return e.db.ExecContext(ctx, query, args...)
}

func (e *PostgresSchemaEditor) CreateModel(model *migrator.ModelDescriptor) error {
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

func (e *PostgresSchemaEditor) DropModel(model *migrator.ModelDescriptor) error {
	query := fmt.Sprintf("DROP TABLE %q;", model.Table)
	_, err := e.db.Exec(query)
	return err
}

func (e *PostgresSchemaEditor) AddField(model *migrator.ModelDescriptor, field migrator.FieldDescriptor) error {
	var w strings.Builder
	w.WriteString("ALTER TABLE \"")
	w.WriteString(model.Table)
	w.WriteString("\" ADD COLUMN ")
	WriteColumn(&w, field)
	w.WriteString(";")
	_, err := e.db.Exec(w.String())
	return err
}

func (e *PostgresSchemaEditor) RemoveField(model *migrator.ModelDescriptor, field migrator.FieldDescriptor) error {
	query := fmt.Sprintf("ALTER TABLE %q DROP COLUMN %q;", model.Table, field.Column)
	_, err := e.db.Exec(query)
	return err
}

func WriteColumn(w *strings.Builder, col migrator.FieldDescriptor) {
	w.WriteString("\"")
	w.WriteString(col.Column)
	w.WriteString("\" ")

	if col.Auto {
		// Serial types replace the integer type and imply NOT NULL.
		w.WriteString("BIGSERIAL")
	} else {
		w.WriteString(migrator.GetFieldType(&drivers.DriverPostgres{}, &col))
		if col.Nullable {
			w.WriteString(" NULL")
		} else {
			w.WriteString(" NOT NULL")
		}
	}

	if col.Primary {
		w.WriteString(" PRIMARY KEY")
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
