package postgres

import (
	"github.com/Nigel2392/go-django-migrator/src/drivers"
	"github.com/Nigel2392/go-django-migrator/src/migrator"
)

// POSTGRES TYPES
func init() {
	for _, t := range []string{"string", "sql.NullString"} {
		migrator.RegisterColumnType(&drivers.DriverPostgres{}, t, type__string)
	}
	for _, t := range []string{"int8", "int16", "sql.NullInt16"} {
		migrator.RegisterColumnType(&drivers.DriverPostgres{}, t, type__smallint)
	}
	for _, t := range []string{"int", "int32", "sql.NullInt32"} {
		migrator.RegisterColumnType(&drivers.DriverPostgres{}, t, type__int)
	}
	for _, t := range []string{"int64", "uint", "uint32", "uint64", "sql.NullInt64"} {
		migrator.RegisterColumnType(&drivers.DriverPostgres{}, t, type__bigint)
	}
	for _, t := range []string{"float32", "float64", "sql.NullFloat64"} {
		migrator.RegisterColumnType(&drivers.DriverPostgres{}, t, type__float)
	}
	for _, t := range []string{"bool", "sql.NullBool"} {
		migrator.RegisterColumnType(&drivers.DriverPostgres{}, t, type__bool)
	}
	for _, t := range []string{"time.Time", "sql.NullTime"} {
		migrator.RegisterColumnType(&drivers.DriverPostgres{}, t, type__datetime)
	}
	migrator.RegisterColumnType(&drivers.DriverPostgres{}, "[]uint8", type__blob)
}

func type__string(f *migrator.FieldDescriptor) string {
	return "TEXT"
}

func type__smallint(f *migrator.FieldDescriptor) string {
	return "SMALLINT"
}

func type__int(f *migrator.FieldDescriptor) string {
	return "INTEGER"
}

func type__bigint(f *migrator.FieldDescriptor) string {
	return "BIGINT"
}

func type__float(f *migrator.FieldDescriptor) string {
	return "DOUBLE PRECISION"
}

func type__bool(f *migrator.FieldDescriptor) string {
	return "BOOLEAN"
}

func type__datetime(f *migrator.FieldDescriptor) string {
	return "TIMESTAMPTZ"
}

func type__blob(f *migrator.FieldDescriptor) string {
	return "BYTEA"
}
