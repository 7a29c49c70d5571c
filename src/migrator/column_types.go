package migrator

import (
	"database/sql/driver"
	"reflect"
)

// Per-driver column type lookup. Descriptors carry an opaque type identifier
// (the Go type name the field was extracted from); each SQL backend registers
// the mapping from those identifiers to its column types.
var driversToTypes = make(map[reflect.Type]map[string]func(f *FieldDescriptor) string)

func RegisterColumnType(d driver.Driver, typeName string, fn func(f *FieldDescriptor) string) {
	var t = reflect.TypeOf(d)
	var m, ok = driversToTypes[t]
	if !ok || m == nil {
		m = make(map[string]func(f *FieldDescriptor) string)
		driversToTypes[t] = m
	}
	m[typeName] = fn
}

// GetFieldType returns the column type for a field under the given driver,
// falling back to TEXT for unregistered type identifiers.
func GetFieldType(d driver.Driver, f *FieldDescriptor) string {
	var t = reflect.TypeOf(d)
	if m, ok := driversToTypes[t]; ok && m != nil {
		if fn, ok := m[f.Type]; ok {
			return fn(f)
		}
	}
	return "TEXT"
}
