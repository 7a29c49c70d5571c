package migrator

import (
	"slices"

	"github.com/pkg/errors"
)

// Diff compares the currently declared models against the models recorded by
// the last migration snapshot and returns the models that must be embedded in
// the new migration together with the raw, unordered operation set.
//
// The output is fully determined by the inputs: table names and column names
// are visited in lexicographic order, never in map iteration order.
//
// On any error no partial result is returned.
func Diff(current, snapshot []*ModelDescriptor) (changed []*ModelDescriptor, operations []Operation, err error) {
	var (
		currentByTable  = make(map[string]*ModelDescriptor, len(current))
		snapshotByTable = make(map[string]*ModelDescriptor, len(snapshot))
	)
	for _, m := range current {
		currentByTable[m.Table] = m
	}
	for _, m := range snapshot {
		snapshotByTable[m.Table] = m
	}

	for _, table := range sortedKeyUnion(currentByTable, snapshotByTable) {
		var (
			curr, inCurrent = currentByTable[table]
			snap, inSnap    = snapshotByTable[table]
		)

		switch {
		case inCurrent && !inSnap:
			operations = append(operations, newCreateModel(curr))
			changed = append(changed, curr)

		case !inCurrent && inSnap:
			// Carry the snapshot's fields so the operation can recreate the
			// table when applied backwards.
			operations = append(operations, newRemoveModel(snap))

		case curr.Equals(snap):
			// Unchanged.

		default:
			var fieldOps, err = diffFields(curr, snap)
			if err != nil {
				return nil, nil, err
			}
			operations = append(operations, fieldOps...)
			changed = append(changed, curr)
		}
	}

	return changed, operations, nil
}

// diffFields computes the column-level operations for a model present in both
// collections with differing field sets.
func diffFields(curr, snap *ModelDescriptor) ([]Operation, error) {
	var (
		currFields = make(map[string]FieldDescriptor, curr.Fields.Len())
		snapFields = make(map[string]FieldDescriptor, snap.Fields.Len())
	)
	for _, f := range curr.FieldList() {
		currFields[f.Column] = f
	}
	for _, f := range snap.FieldList() {
		snapFields[f.Column] = f
	}

	var operations []Operation
	for _, column := range sortedKeyUnion(currFields, snapFields) {
		var (
			currField, inCurrent = currFields[column]
			snapField, inSnap    = snapFields[column]
		)

		switch {
		case inCurrent && !inSnap:
			operations = append(operations, newAddField(curr, currField))

		case !inCurrent && inSnap:
			// The removed column no longer exists on the current model, so
			// the operation references the snapshot's descriptor.
			operations = append(operations, newRemoveField(snap, snapField))

		case !currField.Equals(&snapField):
			return nil, errors.Wrapf(
				ErrAlterField, "table %q, column %q", curr.Table, column,
			)
		}
	}

	return operations, nil
}

func sortedKeyUnion[V any](a, b map[string]V) []string {
	var keys = make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
