package migrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type DependencyType int

const (
	// DependencyOnMigration orders a migration after another migration.
	DependencyOnMigration DependencyType = iota + 1

	// DependencyOnModel orders a migration after whichever migration creates
	// the named model.
	DependencyOnModel
)

const (
	dependencyKindMigration = "migration"
	dependencyKindModel     = "model"
)

// Dependency is one ordering constraint attached to a whole migration.
//
// For DependencyOnMigration, App and Migration identify the migration that
// must be applied first. For DependencyOnModel, App and Table identify a
// model; the migration must be applied after the migration that creates it.
type Dependency struct {
	Type      DependencyType
	App       string
	Migration string
	Table     string
}

func (d Dependency) String() string {
	switch d.Type {
	case DependencyOnMigration:
		return strings.Join([]string{dependencyKindMigration, d.App, d.Migration}, ":")
	case DependencyOnModel:
		return strings.Join([]string{dependencyKindModel, d.App, d.Table}, ":")
	}
	return fmt.Sprintf("unknown_dependency(%d)", int(d.Type))
}

func (d Dependency) MarshalJSON() ([]byte, error) {
	if d.Type != DependencyOnMigration && d.Type != DependencyOnModel {
		return nil, fmt.Errorf("unknown dependency type %d", int(d.Type))
	}
	return json.Marshal(d.String())
}

func (d *Dependency) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.Wrap(err, "failed to unmarshal dependency")
	}

	var parts = strings.SplitN(str, ":", 3)
	if len(parts) != 3 {
		return fmt.Errorf("invalid dependency format: %q", str)
	}

	switch parts[0] {
	case dependencyKindMigration:
		*d = Dependency{Type: DependencyOnMigration, App: parts[1], Migration: parts[2]}
	case dependencyKindModel:
		*d = Dependency{Type: DependencyOnModel, App: parts[1], Table: parts[2]}
	default:
		return fmt.Errorf("invalid dependency kind: %q", parts[0])
	}
	return nil
}

// ResolveDependencies computes the dependency list for a new migration.
//
// The immediately preceding migration in the same app, when there is one,
// contributes a single migration dependency; migrations within an app form a
// linear chain, so that one edge anchors the new migration after the whole
// chain. Every foreign-key target that no CreateModel operation in this
// migration provides contributes a model dependency on the app and table of
// the target, deduplicated, in operation order.
func ResolveDependencies(app string, lastMigration string, operations []Operation) []Dependency {
	var dependencies []Dependency
	if lastMigration != "" {
		dependencies = append(dependencies, Dependency{
			Type:      DependencyOnMigration,
			App:       app,
			Migration: lastMigration,
		})
	}

	var local = make(map[string]struct{}, len(operations))
	for _, op := range operations {
		if op.Type == OperationCreateModel {
			local[op.Model] = struct{}{}
		}
	}

	var seen = make(map[string]struct{})
	var addModelDep = func(rel *Relation) {
		if rel == nil {
			return
		}
		if _, ok := local[rel.Model]; ok {
			return
		}
		var depApp = rel.App
		if depApp == "" {
			depApp = app
		}
		var key = depApp + ":" + rel.Table
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		dependencies = append(dependencies, Dependency{
			Type:  DependencyOnModel,
			App:   depApp,
			Table: rel.Table,
		})
	}

	for _, op := range operations {
		switch op.Type {
		case OperationCreateModel:
			for _, field := range op.Fields {
				addModelDep(field.Rel)
			}
		case OperationAddField:
			if op.Field != nil {
				addModelDep(op.Field.Rel)
			}
		}
	}

	return dependencies
}
