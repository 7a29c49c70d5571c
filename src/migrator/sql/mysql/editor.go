// Package mysql provides a MySQL implementation of the migrator.SchemaEditor interface.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Nigel2392/go-django-migrator/src/drivers"
	"github.com/Nigel2392/go-django-migrator/src/migrator"
	"github.com/jmoiron/sqlx"
)

var _ migrator.SchemaEditor = &MySQLSchemaEditor{}

func init() {
	migrator.RegisterSchemaEditor(&drivers.DriverMySQL{}, func(db *sql.DB) migrator.SchemaEditor {
		return NewMySQLSchemaEditor(db)
	})
}

const (
	createTableMigrations = `CREATE TABLE IF NOT EXISTS migrations (
		id INT AUTO_INCREMENT PRIMARY KEY,
		app_name VARCHAR(255) NOT NULL,
		migration_name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY unique_migration (app_name, migration_name)
	);`
	insertTableMigrations = `INSERT INTO migrations (app_name, migration_name) VALUES (?, ?);`
	deleteTableMigrations = `DELETE FROM migrations WHERE app_name = ? AND migration_name = ?;`
	selectTableMigrations = `SELECT COUNT(*) FROM migrations WHERE app_name = ? AND migration_name = ? LIMIT 1;`
)

type MySQLSchemaEditor struct {
	db            *sqlx.DB
	tablesCreated bool
}

func NewMySQLSchemaEditor(db *sql.DB) *MySQLSchemaEditor {
	return &MySQLSchemaEditor{db: sqlx.NewDb(db, drivers.DatabaseName(db))}
}

func (e *MySQLSchemaEditor) Setup() error {
	if e.tablesCreated {
		return nil
	}
	if _, err := e.db.Exec(createTableMigrations); err != nil {
		return err
	}
	e.tablesCreated = true
	return nil
}

func (e *MySQLSchemaEditor) StoreMigration(appName, migrationName string) error {
	_, err := e.db.Exec(insertTableMigrations, appName, migrationName)
	return err
}

func (e *MySQLSchemaEditor) HasMigration(appName, migrationName string) (bool, error) {
	var count int
	if err := e.db.Get(&count, selectTableMigrations, appName, migrationName); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *MySQLSchemaEditor) RemoveMigration(appName, migrationName string) error {
	_, err := e.db.Exec(deleteTableMigrations, appName, migrationName)
	return err
}

func (e *MySQLSchemaEditor) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return e.db.ExecContext(ctx, query, args...)
}

func (e *MySQLSchemaEditor) CreateModel(model *migrator.ModelDescriptor) error {
	var w strings.Builder
	w.WriteString("CREATE TABLE `")
	w.WriteString(model.Table)
	w.WriteString("` (")

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

func (e *MySQLSchemaEditor) DropModel(model *migrator.ModelDescriptor) error {
	query := fmt.Sprintf("DROP TABLE `%s`;", model.Table)
	_, err := e.db.Exec(query)
	return err
}

func (e *MySQLSchemaEditor) AddField(model *migrator.ModelDescriptor, field migrator.FieldDescriptor) error {
	var w strings.Builder
	w.WriteString("ALTER TABLE `")
	w.WriteString(model.Table)
	w.WriteString("` ADD COLUMN ")
	WriteColumn(&w, field)
	w.WriteString(";")
	_, err := e.db.Exec(w.String())
	return err
}

func (e *MySQLSchemaEditor) RemoveField(model *migrator.ModelDescriptor, field migrator.FieldDescriptor) error {
	query := fmt.Sprintf("ALTER TABLE `%s` DROP COLUMN `%s`;", model.Table, field.Column)
	_, err := e.db.Exec(query)
	return err
}

func WriteColumn(w *strings.Builder, col migrator.FieldDescriptor) {
	w.WriteString("`")
	w.WriteString(col.Column)
	w.WriteString("` ")
	w.WriteString(migrator.GetFieldType(&drivers.DriverMySQL{}, &col))
	if col.Nullable {
		w.WriteString(" NULL")
	} else {
		w.WriteString(" NOT NULL")
	}
	if col.Auto {
		w.WriteString(" AUTO_INCREMENT")
	}
	if col.Primary {
		w.WriteString(" PRIMARY KEY")
	}
	if col.Unique {
		w.WriteString(" UNIQUE")
	}
	if col.Rel != nil {
		w.WriteString(" REFERENCES `")
		w.WriteString(col.Rel.Table)
		w.WriteString("`(`")
		w.WriteString(col.Rel.Column)
		w.WriteString("`)")
	}
}
