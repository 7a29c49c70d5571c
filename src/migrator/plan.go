package migrator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// MigrationPrefix is the fixed leading token of every migration name.
	MigrationPrefix = "migration"

	migrationInitialSuffix = "initial"
	migrationAutoSuffix    = "auto"
	migrationTimeLayout    = "20060102_150405"
)

// Planner computes one migration for one app. It holds no state between
// calls; every Plan invocation owns its inputs and outputs exclusively.
type Planner struct {
	// App is the label of the application being planned.
	App string

	// Now supplies the timestamp embedded in generated migration names.
	// Defaults to time.Now; tests pin it.
	Now func() time.Time
}

func (p *Planner) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Plan diffs the current models against the snapshot models, breaks any
// foreign-key cycles among the resulting operations, orders them so every
// operation runs after the operations it depends on, and resolves the new
// migration's cross-migration dependencies.
//
// lastMigration is the name of the most recent existing migration for the
// app, or "" for the first migration. Plan returns nil when no migration is
// needed. On error, no partial migration is returned.
func (p *Planner) Plan(current, snapshot []*ModelDescriptor, lastMigration string) (*MigrationFile, error) {
	var changed, operations, err = Diff(current, snapshot)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to diff models for app %q", p.App)
	}
	if len(operations) == 0 {
		return nil, nil
	}

	operations = BreakCycles(operations)

	// The cycle breaker mutates the operation list, so the graph has to be
	// rebuilt before sequencing.
	var graph = BuildOperationGraph(operations)
	operations, err = SortOperations(operations, graph)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to order operations for app %q", p.App)
	}

	var name string
	name, err = NextMigrationName(lastMigration, p.now())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to name migration for app %q", p.App)
	}

	return &MigrationFile{
		AppName:      p.App,
		Name:         name,
		Models:       changed,
		Dependencies: ResolveDependencies(p.App, lastMigration, operations),
		Operations:   operations,
	}, nil
}

// NextMigrationName generates the name of the migration following
// lastMigration. The first migration of an app is
// "migration_0001_initial"; later ones are
// "migration_<seq>_auto_<UTC timestamp>", where <seq> is the previous
// migration's sequence number plus one.
func NextMigrationName(lastMigration string, now time.Time) (string, error) {
	if lastMigration == "" {
		return fmt.Sprintf("%s_%04d_%s", MigrationPrefix, 1, migrationInitialSuffix), nil
	}

	var seq, err = MigrationSequence(lastMigration)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"%s_%04d_%s_%s",
		MigrationPrefix, seq+1, migrationAutoSuffix,
		now.UTC().Format(migrationTimeLayout),
	), nil
}

// MigrationSequence parses the sequence number out of a migration name. The
// name is expected to look like "migration_0001_initial": the sequence is the
// second underscore-delimited segment.
func MigrationSequence(name string) (int, error) {
	var parts = strings.Split(name, "_")
	if len(parts) < 3 || parts[0] != MigrationPrefix {
		return 0, errors.Wrapf(ErrInvalidMigrationName, "%q", name)
	}

	var seq, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidMigrationName, "%q: bad sequence %q", name, parts[1])
	}

	return seq, nil
}
