package migrator

import (
	"reflect"
	"testing"
)

func countFields(operations []Operation) int {
	var n int
	for _, op := range operations {
		n += len(op.Fields)
		if op.Field != nil {
			n++
		}
	}
	return n
}

func TestBreakCyclesTwoModelCycle(t *testing.T) {
	var operations = []Operation{
		{
			Type: OperationCreateModel, Table: "authors", Model: "app.Author",
			Fields: []FieldDescriptor{
				idField(),
				fkField("FavoriteBook", "favorite_book_id", Relation{Model: "app.Book", Table: "books", Column: "id"}),
			},
		},
		{
			Type: OperationCreateModel, Table: "books", Model: "app.Book",
			Fields: []FieldDescriptor{
				idField(),
				fkField("Author", "author_id", Relation{Model: "app.Author", Table: "authors", Column: "id"}),
			},
		},
	}

	var broken = BreakCycles(operations)
	if len(broken) != 3 {
		t.Fatalf("expected 3 operations, got %d", len(broken))
	}

	var creates, addFields int
	for _, op := range broken {
		switch op.Type {
		case OperationCreateModel:
			creates++
		case OperationAddField:
			addFields++
		}
	}
	if creates != 2 || addFields != 1 {
		t.Fatalf("expected 2 creates and 1 add_field, got %d and %d", creates, addFields)
	}

	// No field may be lost: it moves from a create to an add_field.
	if got, want := countFields(broken), countFields(operations); got != want {
		t.Errorf("expected %d fields total, got %d", want, got)
	}

	// The reduced list must sort cleanly.
	var sorted, err = SortOperations(broken, BuildOperationGraph(broken))
	if err != nil {
		t.Fatalf("expected the broken list to be acyclic: %v", err)
	}
	if sorted[len(sorted)-1].Type != OperationAddField {
		t.Errorf("expected the add_field to run last, got %s", sorted[len(sorted)-1].Type)
	}
}

func TestBreakCyclesThreeModelCycle(t *testing.T) {
	var operations = []Operation{
		{
			Type: OperationCreateModel, Table: "a", Model: "app.A",
			Fields: []FieldDescriptor{
				idField(),
				fkField("B", "b_id", Relation{Model: "app.B", Table: "b", Column: "id"}),
			},
		},
		{
			Type: OperationCreateModel, Table: "b", Model: "app.B",
			Fields: []FieldDescriptor{
				idField(),
				fkField("C", "c_id", Relation{Model: "app.C", Table: "c", Column: "id"}),
			},
		},
		{
			Type: OperationCreateModel, Table: "c", Model: "app.C",
			Fields: []FieldDescriptor{
				idField(),
				fkField("A", "a_id", Relation{Model: "app.A", Table: "a", Column: "id"}),
			},
		},
	}

	var broken = BreakCycles(operations)
	if len(broken) != 4 {
		t.Fatalf("expected 4 operations, got %d", len(broken))
	}
	if got, want := countFields(broken), countFields(operations); got != want {
		t.Errorf("expected %d fields total, got %d", want, got)
	}

	if _, err := SortOperations(broken, BuildOperationGraph(broken)); err != nil {
		t.Fatalf("expected the broken list to be acyclic: %v", err)
	}
}

func TestBreakCyclesAcyclicInputUntouched(t *testing.T) {
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

	var broken = BreakCycles(operations)
	if !reflect.DeepEqual(broken, operations) {
		t.Errorf("expected an acyclic list to pass through unchanged")
	}
}

func TestBreakCyclesDoesNotMutateInput(t *testing.T) {
	var operations = []Operation{
		{
			Type: OperationCreateModel, Table: "authors", Model: "app.Author",
			Fields: []FieldDescriptor{
				idField(),
				fkField("FavoriteBook", "favorite_book_id", Relation{Model: "app.Book", Table: "books", Column: "id"}),
			},
		},
		{
			Type: OperationCreateModel, Table: "books", Model: "app.Book",
			Fields: []FieldDescriptor{
				idField(),
				fkField("Author", "author_id", Relation{Model: "app.Author", Table: "authors", Column: "id"}),
			},
		},
	}
	var snapshot = make([]Operation, len(operations))
	for i, op := range operations {
		snapshot[i] = op.Clone()
	}

	BreakCycles(operations)

	if !reflect.DeepEqual(operations, snapshot) {
		t.Errorf("expected the input operation list to be left untouched")
	}
}

func TestBreakCyclesSelfReference(t *testing.T) {
	var operations = []Operation{
		{
			Type: OperationCreateModel, Table: "nodes", Model: "app.Node",
			Fields: []FieldDescriptor{
				idField(),
				fkField("Parent", "parent_id", Relation{Model: "app.Node", Table: "nodes", Column: "id"}),
			},
		},
	}

	var broken = BreakCycles(operations)
	if !reflect.DeepEqual(broken, operations) {
		t.Errorf("expected a self-referencing model to pass through unchanged")
	}
}
