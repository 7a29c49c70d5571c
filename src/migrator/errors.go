package migrator

import "github.com/Nigel2392/go-django/src/core/errs"

const (
	// ErrAlterField is returned when a column present in both the current
	// model and the snapshot changed one of its attributes. Generating an
	// alter-column operation is not implemented; the diff fails instead of
	// silently dropping the change.
	ErrAlterField errs.Error = "altering an existing column is not implemented"

	// ErrInvalidMigrationName is returned when a migration name cannot be
	// parsed into its sequence number.
	ErrInvalidMigrationName errs.Error = "invalid migration name"

	// ErrCyclicMigration is returned when two or more finalized migrations
	// depend on each other.
	ErrCyclicMigration errs.Error = "cyclic dependency between migrations"

	// ErrMissingDependency is returned when a migration depends on a
	// migration that is not part of the collection being sorted.
	ErrMissingDependency errs.Error = "missing migration dependency"

	// ErrResidualCycle indicates the operation graph still contained a cycle
	// when it reached the sequencer. The cycle breaker must have removed all
	// of them, so this is a defect in the planner rather than bad input.
	ErrResidualCycle errs.Error = "operation graph contains a cycle after cycle breaking"

	ErrUnknownDriver errs.Error = "no schema editor registered for driver"
)
