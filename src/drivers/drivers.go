// Package drivers maps database/sql driver types to the names sqlx knows
// them by. The schema editor packages register their drivers on import; any
// other driver needs to be registered explicitly before use.
package drivers

import (
	"database/sql"
	"database/sql/driver"
	"reflect"

	"github.com/go-sql-driver/mysql"
	pg_stdlib "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

type (
	DriverPostgres = pg_stdlib.Driver
	DriverMySQL    = mysql.MySQLDriver
	DriverSQLite   = sqlite3.SQLiteDriver
)

var databases = make(map[reflect.Type]string)

func init() {
	RegisterDriver(&DriverSQLite{}, "sqlite3")
	RegisterDriver(&DriverMySQL{}, "mysql")
	RegisterDriver(&DriverPostgres{}, "pgx")
}

// RegisterDriver registers a driver under the database name sqlx uses for
// binding query parameters.
func RegisterDriver(d driver.Driver, database string) {
	databases[reflect.TypeOf(d)] = database
}

// DatabaseName returns the registered database name for the connection's
// driver, or "" when the driver is unknown.
func DatabaseName(db *sql.DB) string {
	return databases[reflect.TypeOf(db.Driver())]
}
