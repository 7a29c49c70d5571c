package migrator

import (
	"github.com/Nigel2392/go-signals"
)

// MigrationSignal is sent around the application of a single migration.
type MigrationSignal struct {
	Engine    *MigrationEngine
	Migration *MigrationFile
}

var (
	migration_signal_pool = signals.NewPool[*MigrationSignal]()

	// SIGNAL_PRE_MIGRATE fires before a migration's operations are executed.
	SIGNAL_PRE_MIGRATE = migration_signal_pool.Get("migrator.pre_migrate")

	// SIGNAL_POST_MIGRATE fires after a migration was executed and stored.
	SIGNAL_POST_MIGRATE = migration_signal_pool.Get("migrator.post_migrate")
)
