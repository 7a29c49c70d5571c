package migrator

import (
	"slices"

	"github.com/pkg/errors"
)

// Migration is the capability a collection item needs for dependency
// sorting: an app label, a migration name and the declared dependencies.
// Both the generation-time planner and the apply-time engine sort through
// this interface.
type Migration interface {
	AppLabel() string
	MigrationName() string
	MigrationDependencies() []Dependency
}

// ModelProvider lets the sorter resolve model dependencies. Collection items
// that also implement it can be targets of DependencyOnModel edges; model
// dependencies whose provider is not in the collection are treated as
// external (already applied) and ignored.
type ModelProvider interface {
	ProvidesModel(table string) bool
}

type migrationKey struct {
	app  string
	name string
}

func (k migrationKey) String() string {
	return k.app + ":" + k.name
}

func compareMigrationKeys(a, b migrationKey) int {
	if a.app != b.app {
		if a.app < b.app {
			return -1
		}
		return 1
	}
	if a.name != b.name {
		if a.name < b.name {
			return -1
		}
		return 1
	}
	return 0
}

// SortMigrations orders migrations so that every dependency precedes its
// dependents. Ties are broken by (app, name) lexicographic order, so the
// result is reproducible for any input order.
//
// A dependency on a migration outside the collection is an error; a cycle
// between migrations means two finalized migrations depend on each other,
// which is bad input rather than a planner defect, and is reported as
// ErrCyclicMigration.
func SortMigrations[T Migration](migrations []T) ([]T, error) {
	var (
		keys  = make([]migrationKey, 0, len(migrations))
		byKey = make(map[migrationKey]T, len(migrations))
	)
	for _, m := range migrations {
		var key = migrationKey{app: m.AppLabel(), name: m.MigrationName()}
		keys = append(keys, key)
		byKey[key] = m
	}
	slices.SortFunc(keys, compareMigrationKeys)

	// Resolve each migration's dependencies to keys inside the collection.
	var (
		indegree   = make(map[migrationKey]int, len(keys))
		dependents = make(map[migrationKey][]migrationKey, len(keys))
	)
	for _, key := range keys {
		for _, dep := range byKey[key].MigrationDependencies() {
			var target, ok, err = resolveDependency(dep, keys, byKey)
			if err != nil {
				return nil, errors.Wrapf(err, "migration %s", key)
			}
			if !ok || target == key {
				continue
			}
			dependents[target] = append(dependents[target], key)
			indegree[key]++
		}
	}

	var (
		ordered = make([]T, 0, len(keys))
		done    = make(map[migrationKey]bool, len(keys))
	)
	for len(ordered) < len(keys) {
		var next migrationKey
		var found bool
		for _, key := range keys {
			if !done[key] && indegree[key] == 0 {
				next = key
				found = true
				break
			}
		}
		if !found {
			// Every remaining migration waits on another remaining one.
			for _, key := range keys {
				if !done[key] {
					return nil, errors.Wrapf(ErrCyclicMigration, "migration %s", key)
				}
			}
			return nil, errors.WithStack(ErrCyclicMigration)
		}

		done[next] = true
		ordered = append(ordered, byKey[next])
		for _, dep := range dependents[next] {
			indegree[dep]--
		}
	}

	return ordered, nil
}

// resolveDependency maps a dependency to the key of the migration inside the
// collection that satisfies it.
func resolveDependency[T Migration](dep Dependency, keys []migrationKey, byKey map[migrationKey]T) (migrationKey, bool, error) {
	switch dep.Type {
	case DependencyOnMigration:
		var key = migrationKey{app: dep.App, name: dep.Migration}
		if _, ok := byKey[key]; !ok {
			return migrationKey{}, false, errors.Wrapf(
				ErrMissingDependency, "depends on %s", key,
			)
		}
		return key, true, nil

	case DependencyOnModel:
		// The first migration (in sorted order) of the target app that
		// creates the model provides it. No provider in the collection means
		// the model predates it; the dependency is satisfied externally.
		for _, key := range keys {
			if key.app != dep.App {
				continue
			}
			if provider, ok := any(byKey[key]).(ModelProvider); ok && provider.ProvidesModel(dep.Table) {
				return key, true, nil
			}
		}
		return migrationKey{}, false, nil
	}

	return migrationKey{}, false, errors.Errorf("unknown dependency type %d", int(dep.Type))
}
