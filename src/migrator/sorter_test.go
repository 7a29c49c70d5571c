package migrator

import (
	"testing"

	"github.com/pkg/errors"
)

func migrationFile(app, name string, deps ...Dependency) *MigrationFile {
	return &MigrationFile{AppName: app, Name: name, Dependencies: deps}
}

func migrationNames(migrations []*MigrationFile) []string {
	var names = make([]string, 0, len(migrations))
	for _, m := range migrations {
		names = append(names, m.AppName+":"+m.Name)
	}
	return names
}

func assertOrder(t *testing.T, got []*MigrationFile, want []string) {
	t.Helper()
	var names = migrationNames(got)
	if len(names) != len(want) {
		t.Fatalf("expected %d migrations, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, names)
		}
	}
}

func TestSortMigrationsDependencyOrder(t *testing.T) {
	var migrations = []*MigrationFile{
		migrationFile("auth", "migration_0002_auto_20240301_123045",
			Dependency{Type: DependencyOnMigration, App: "auth", Migration: "migration_0001_initial"},
		),
		migrationFile("auth", "migration_0001_initial"),
	}

	var sorted, err = SortMigrations(migrations)
	if err != nil {
		t.Fatalf("SortMigrations failed: %v", err)
	}
	assertOrder(t, sorted, []string{
		"auth:migration_0001_initial",
		"auth:migration_0002_auto_20240301_123045",
	})
}

func TestSortMigrationsLexicographicTieBreak(t *testing.T) {
	var migrations = []*MigrationFile{
		migrationFile("todos", "migration_0001_initial"),
		migrationFile("auth", "migration_0001_initial"),
		migrationFile("blog", "migration_0001_initial"),
	}

	var sorted, err = SortMigrations(migrations)
	if err != nil {
		t.Fatalf("SortMigrations failed: %v", err)
	}
	assertOrder(t, sorted, []string{
		"auth:migration_0001_initial",
		"blog:migration_0001_initial",
		"todos:migration_0001_initial",
	})
}

func TestSortMigrationsModelDependency(t *testing.T) {
	var authInitial = migrationFile("auth", "migration_0001_initial")
	authInitial.Operations = []Operation{
		{Type: OperationCreateModel, Table: "users", Model: "auth.User", Fields: []FieldDescriptor{idField()}},
	}

	// "app" sorts before "auth"; only the model dependency forces auth first.
	var migrations = []*MigrationFile{
		migrationFile("app", "migration_0001_initial",
			Dependency{Type: DependencyOnModel, App: "auth", Table: "users"},
		),
		authInitial,
	}

	var sorted, err = SortMigrations(migrations)
	if err != nil {
		t.Fatalf("SortMigrations failed: %v", err)
	}
	assertOrder(t, sorted, []string{
		"auth:migration_0001_initial",
		"app:migration_0001_initial",
	})
}

func TestSortMigrationsExternalModelDependency(t *testing.T) {
	// No migration in the collection creates auth/users: the model predates
	// the collection and the dependency is satisfied externally.
	var migrations = []*MigrationFile{
		migrationFile("app", "migration_0001_initial",
			Dependency{Type: DependencyOnModel, App: "auth", Table: "users"},
		),
	}

	var sorted, err = SortMigrations(migrations)
	if err != nil {
		t.Fatalf("SortMigrations failed: %v", err)
	}
	if len(sorted) != 1 {
		t.Errorf("expected 1 migration, got %d", len(sorted))
	}
}

func TestSortMigrationsMissingDependency(t *testing.T) {
	var migrations = []*MigrationFile{
		migrationFile("app", "migration_0002_auto_20240301_123045",
			Dependency{Type: DependencyOnMigration, App: "app", Migration: "migration_0001_initial"},
		),
	}

	var _, err = SortMigrations(migrations)
	if !errors.Is(err, ErrMissingDependency) {
		t.Errorf("expected ErrMissingDependency, got %v", err)
	}
}

func TestSortMigrationsCycle(t *testing.T) {
	var migrations = []*MigrationFile{
		migrationFile("a", "migration_0001_initial",
			Dependency{Type: DependencyOnMigration, App: "b", Migration: "migration_0001_initial"},
		),
		migrationFile("b", "migration_0001_initial",
			Dependency{Type: DependencyOnMigration, App: "a", Migration: "migration_0001_initial"},
		),
	}

	var _, err = SortMigrations(migrations)
	if !errors.Is(err, ErrCyclicMigration) {
		t.Errorf("expected ErrCyclicMigration, got %v", err)
	}
}

func TestSortMigrationsStableAcrossInputOrder(t *testing.T) {
	var forward = []*MigrationFile{
		migrationFile("auth", "migration_0001_initial"),
		migrationFile("todos", "migration_0001_initial"),
	}
	var backward = []*MigrationFile{forward[1], forward[0]}

	sortedForward, err := SortMigrations(forward)
	if err != nil {
		t.Fatalf("SortMigrations failed: %v", err)
	}
	sortedBackward, err := SortMigrations(backward)
	if err != nil {
		t.Fatalf("SortMigrations failed: %v", err)
	}

	for i := range sortedForward {
		if sortedForward[i] != sortedBackward[i] {
			t.Fatalf(
				"expected identical order for any input order, got %v and %v",
				migrationNames(sortedForward), migrationNames(sortedBackward),
			)
		}
	}
}
