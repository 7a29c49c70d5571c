package migrator

import (
	"testing"
	"time"

	"github.com/pkg/errors"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
}

func TestPlanFirstMigration(t *testing.T) {
	var (
		planner = &Planner{App: "app", Now: fixedNow}
		current = []*ModelDescriptor{
			NewModelDescriptorOf("app", "todos", "app.Todo",
				idField(),
				fkField("User", "user_id", Relation{Model: "app.User", Table: "users", Column: "id"}),
			),
			NewModelDescriptorOf("app", "users", "app.User",
				idField(), textField("Name", "name"),
			),
		}
	)

	var mig, err = planner.Plan(current, nil, "")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if mig == nil {
		t.Fatalf("expected a migration, got nil")
	}

	if mig.Name != "migration_0001_initial" {
		t.Errorf("expected name 'migration_0001_initial', got %q", mig.Name)
	}
	if len(mig.Dependencies) != 0 {
		t.Errorf("expected no dependencies, got %v", mig.Dependencies)
	}

	if len(mig.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(mig.Operations))
	}
	if mig.Operations[0].Table != "users" || mig.Operations[1].Table != "todos" {
		t.Errorf(
			"expected users to be created before todos, got %q, %q",
			mig.Operations[0].Table, mig.Operations[1].Table,
		)
	}

	if len(mig.Models) != 2 {
		t.Errorf("expected 2 embedded models, got %d", len(mig.Models))
	}
}

func TestPlanNoChanges(t *testing.T) {
	var (
		planner = &Planner{App: "app", Now: fixedNow}
		models  = []*ModelDescriptor{
			NewModelDescriptorOf("app", "users", "app.User", idField()),
		}
	)

	var mig, err = planner.Plan(models, models, "migration_0001_initial")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if mig != nil {
		t.Errorf("expected no migration for unchanged models, got %v", mig)
	}
}

func TestPlanBreaksForeignKeyCycle(t *testing.T) {
	var (
		planner = &Planner{App: "app", Now: fixedNow}
		current = []*ModelDescriptor{
			NewModelDescriptorOf("app", "authors", "app.Author",
				idField(),
				fkField("FavoriteBook", "favorite_book_id", Relation{Model: "app.Book", Table: "books", Column: "id"}),
			),
			NewModelDescriptorOf("app", "books", "app.Book",
				idField(),
				fkField("Author", "author_id", Relation{Model: "app.Author", Table: "authors", Column: "id"}),
			),
		}
	)

	var mig, err = planner.Plan(current, nil, "")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if len(mig.Operations) != 3 {
		t.Fatalf("expected 3 operations, got %d", len(mig.Operations))
	}
	if mig.Operations[len(mig.Operations)-1].Type != OperationAddField {
		t.Errorf("expected the deferred foreign key to be added last, got %s",
			mig.Operations[len(mig.Operations)-1].Type)
	}

	// Both tables must exist before the deferred foreign key is added.
	for _, op := range mig.Operations[:2] {
		if op.Type != OperationCreateModel {
			t.Errorf("expected create_model, got %s", op.Type)
		}
	}
}

func TestPlanAlterFieldFails(t *testing.T) {
	var (
		planner = &Planner{App: "app", Now: fixedNow}
		current = []*ModelDescriptor{
			NewModelDescriptorOf("app", "users", "app.User",
				FieldDescriptor{Name: "ID", Column: "id", Type: "string", Primary: true},
			),
		}
		snapshot = []*ModelDescriptor{
			NewModelDescriptorOf("app", "users", "app.User", idField()),
		}
	)

	var _, err = planner.Plan(current, snapshot, "migration_0001_initial")
	if !errors.Is(err, ErrAlterField) {
		t.Errorf("expected ErrAlterField, got %v", err)
	}
}

func TestNextMigrationName(t *testing.T) {
	var name, err = NextMigrationName("", fixedNow())
	if err != nil {
		t.Fatalf("NextMigrationName failed: %v", err)
	}
	if name != "migration_0001_initial" {
		t.Errorf("expected 'migration_0001_initial', got %q", name)
	}

	name, err = NextMigrationName(name, fixedNow())
	if err != nil {
		t.Fatalf("NextMigrationName failed: %v", err)
	}
	if name != "migration_0002_auto_20240301_123045" {
		t.Errorf("expected 'migration_0002_auto_20240301_123045', got %q", name)
	}

	name, err = NextMigrationName(name, fixedNow())
	if err != nil {
		t.Fatalf("NextMigrationName failed: %v", err)
	}
	if name != "migration_0003_auto_20240301_123045" {
		t.Errorf("expected 'migration_0003_auto_20240301_123045', got %q", name)
	}
}

func TestMigrationSequence(t *testing.T) {
	var seq, err = MigrationSequence("migration_0001_initial")
	if err != nil {
		t.Fatalf("MigrationSequence failed: %v", err)
	}
	if seq != 1 {
		t.Errorf("expected sequence 1, got %d", seq)
	}

	seq, err = MigrationSequence("migration_0042_auto_20240301_123045")
	if err != nil {
		t.Fatalf("MigrationSequence failed: %v", err)
	}
	if seq != 42 {
		t.Errorf("expected sequence 42, got %d", seq)
	}

	for _, name := range []string{"", "0001_initial", "migration_x_auto", "migration_0001"} {
		if _, err := MigrationSequence(name); !errors.Is(err, ErrInvalidMigrationName) {
			t.Errorf("expected ErrInvalidMigrationName for %q, got %v", name, err)
		}
	}
}
