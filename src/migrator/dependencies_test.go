package migrator

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestResolveDependenciesFirstMigration(t *testing.T) {
	var operations = []Operation{
		{
			Type: OperationCreateModel, Table: "users", Model: "auth.User",
			Fields: []FieldDescriptor{idField()},
		},
	}

	var dependencies = ResolveDependencies("auth", "", operations)
	if len(dependencies) != 0 {
		t.Errorf("expected no dependencies for a self-contained first migration, got %v", dependencies)
	}
}

func TestResolveDependenciesChainsOnLastMigration(t *testing.T) {
	var operations = []Operation{
		{
			Type: OperationAddField, Table: "users", Model: "auth.User",
			Field: &FieldDescriptor{Name: "Email", Column: "email", Type: "string"},
		},
	}

	var dependencies = ResolveDependencies("auth", "migration_0001_initial", operations)
	if len(dependencies) != 1 {
		t.Fatalf("expected 1 dependency, got %d", len(dependencies))
	}

	var want = Dependency{Type: DependencyOnMigration, App: "auth", Migration: "migration_0001_initial"}
	if dependencies[0] != want {
		t.Errorf("expected %v, got %v", want, dependencies[0])
	}
}

func TestResolveDependenciesExternalModels(t *testing.T) {
	var operations = []Operation{
		{
			Type: OperationCreateModel, Table: "todos", Model: "todos.Todo",
			Fields: []FieldDescriptor{
				idField(),
				fkField("User", "user_id", Relation{Model: "auth.User", App: "auth", Table: "users", Column: "id"}),
				fkField("Reviewer", "reviewer_id", Relation{Model: "auth.User", App: "auth", Table: "users", Column: "id"}),
			},
		},
		{
			Type: OperationAddField, Table: "todos", Model: "todos.Todo",
			Field: &FieldDescriptor{
				Name: "Category", Column: "category_id", Type: "int64",
				// No app label on the relation: it defaults to the owning app.
				Rel: &Relation{Model: "todos.Category", Table: "categories", Column: "id"},
			},
		},
	}

	var dependencies = ResolveDependencies("todos", "", operations)
	var want = []Dependency{
		{Type: DependencyOnModel, App: "auth", Table: "users"},
		{Type: DependencyOnModel, App: "todos", Table: "categories"},
	}
	if !reflect.DeepEqual(dependencies, want) {
		t.Errorf("expected %v, got %v", want, dependencies)
	}
}

func TestResolveDependenciesSkipsLocalProviders(t *testing.T) {
	var operations = []Operation{
		{
			Type: OperationCreateModel, Table: "users", Model: "app.User",
			Fields: []FieldDescriptor{idField()},
		},
		{
			Type: OperationCreateModel, Table: "todos", Model: "app.Todo",
			Fields: []FieldDescriptor{
				idField(),
				fkField("User", "user_id", Relation{Model: "app.User", Table: "users", Column: "id"}),
			},
		},
	}

	var dependencies = ResolveDependencies("app", "", operations)
	if len(dependencies) != 0 {
		t.Errorf("expected no dependencies when the target is created locally, got %v", dependencies)
	}
}

func TestDependencyStringRoundTrip(t *testing.T) {
	var deps = []Dependency{
		{Type: DependencyOnMigration, App: "auth", Migration: "migration_0001_initial"},
		{Type: DependencyOnModel, App: "todos", Table: "todos"},
	}

	for _, dep := range deps {
		var data, err = json.Marshal(dep)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		var parsed Dependency
		if err := json.Unmarshal(data, &parsed); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if parsed != dep {
			t.Errorf("expected %v, got %v", dep, parsed)
		}
	}
}

func TestDependencyUnmarshalRejectsGarbage(t *testing.T) {
	for _, input := range []string{`"nonsense"`, `"model:only_two"`, `"index:app:users"`} {
		var dep Dependency
		if err := json.Unmarshal([]byte(input), &dep); err == nil {
			t.Errorf("expected %s to fail to parse", input)
		}
	}
}
