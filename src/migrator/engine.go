package migrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nigel2392/go-django/src/core/attrs"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/pkg/errors"
)

const (
	MIGRATION_FILE_SUFFIX = ".mig"
)

// MigrationFile is one finalized migration: the operations to run, the
// snapshot of every model this migration touched, and the dependency edges
// that decide when it may run relative to other migrations.
type MigrationFile struct {
	// The name of the application for this migration.
	AppName string `json:"-"`

	// The name of the migration, e.g. "migration_0001_initial".
	//
	// This is used to identify the migration and apply it in the correct order.
	Name string `json:"-"`

	// Models are the descriptors of every model this migration created or
	// changed, embedded verbatim so later diffs can use them as the "before"
	// state.
	Models []*ModelDescriptor `json:"models,omitempty"`

	// Dependencies are the migrations (or model creations) that must be
	// applied before this migration.
	Dependencies []Dependency `json:"dependencies,omitempty"`

	// Operations are the ordered schema changes of this migration.
	Operations []Operation `json:"operations"`
}

func (m *MigrationFile) FileName() string {
	return m.Name + MIGRATION_FILE_SUFFIX
}

func (m *MigrationFile) AppLabel() string {
	return m.AppName
}

func (m *MigrationFile) MigrationName() string {
	return m.Name
}

func (m *MigrationFile) MigrationDependencies() []Dependency {
	return m.Dependencies
}

// ProvidesModel reports whether this migration creates the given table, which
// makes it the target of model dependencies during sorting.
func (m *MigrationFile) ProvidesModel(table string) bool {
	for _, op := range m.Operations {
		if op.Type == OperationCreateModel && op.Table == table {
			return true
		}
	}
	return false
}

// MigrationLog is notified of every operation the engine applies.
type MigrationLog interface {
	Log(op Operation, file *MigrationFile)
}

// MigrationEngine plans new migrations from the registered models and applies
// recorded migrations through a schema editor.
type MigrationEngine struct {
	// The path to the directory where the migration files are stored, one
	// subdirectory per app.
	Path string

	// SchemaEditor executes the operations against the database.
	SchemaEditor SchemaEditor

	// Migrations holds the known migration files per app, in applied order.
	Migrations map[string][]*MigrationFile

	// MigrationLog is notified of applied operations, for debugging and
	// auditing. May be nil.
	MigrationLog MigrationLog

	// Now supplies timestamps for generated migration names. Defaults to
	// time.Now.
	Now func() time.Time
}

func NewMigrationEngine(path string, schemaEditor SchemaEditor) *MigrationEngine {
	return &MigrationEngine{
		Path:         path,
		SchemaEditor: schemaEditor,
	}
}

func (m *MigrationEngine) Log(op Operation, file *MigrationFile) {
	if m.MigrationLog == nil {
		return
	}
	m.MigrationLog.Log(op, file)
}

// GetLastMigration returns the most recent known migration for the app.
func (m *MigrationEngine) GetLastMigration(appName string) *MigrationFile {
	var migrations = m.Migrations[appName]
	if len(migrations) == 0 {
		return nil
	}
	return migrations[len(migrations)-1]
}

func (m *MigrationEngine) storeMigrations(migrations []*MigrationFile) {
	m.Migrations = make(map[string][]*MigrationFile)
	for _, mig := range migrations {
		m.Migrations[mig.AppName] = append(m.Migrations[mig.AppName], mig)
	}
}

// snapshotModels reconstructs the last known schema of an app from its
// migration chain: per table, the descriptor embedded by the most recent
// migration that touched it, with tables dropped again when a later
// migration removed them.
func (m *MigrationEngine) snapshotModels(appName string) []*ModelDescriptor {
	var byTable = orderedmap.NewOrderedMap[string, *ModelDescriptor]()
	for _, mig := range m.Migrations[appName] {
		for _, model := range mig.Models {
			byTable.Set(model.Table, model)
		}
		for _, op := range mig.Operations {
			if op.Type == OperationRemoveModel {
				byTable.Delete(op.Table)
			}
		}
	}

	var models = make([]*ModelDescriptor, 0, byTable.Len())
	for head := byTable.Front(); head != nil; head = head.Next() {
		models = append(models, head.Value)
	}
	return models
}

// currentModels extracts descriptors for every model registered to the app.
func currentModels(appName string, models *orderedmap.OrderedMap[string, attrs.Definer]) []*ModelDescriptor {
	var current = make([]*ModelDescriptor, 0, models.Len())
	for head := models.Front(); head != nil; head = head.Next() {
		current = append(current, NewModelDescriptor(appName, head.Value))
	}
	return current
}

// NeedsToMigrate returns the descriptors of every registered model whose
// current shape differs from its last migration snapshot.
func (m *MigrationEngine) NeedsToMigrate() ([]*ModelDescriptor, error) {
	var migrations, err = m.ReadMigrations()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migrations")
	}
	m.storeMigrations(migrations)

	var needsToMigrate = make([]*ModelDescriptor, 0)
	for head := registeredApps.Front(); head != nil; head = head.Next() {
		var appName = head.Key

		var changed, _, err = Diff(
			currentModels(appName, head.Value),
			m.snapshotModels(appName),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to diff models for app %q", appName)
		}

		needsToMigrate = append(needsToMigrate, changed...)
	}

	return needsToMigrate, nil
}

// MakeMigrations plans a new migration for every app whose models changed
// and writes the migration files to disk.
func (m *MigrationEngine) MakeMigrations() error {
	if err := os.MkdirAll(m.Path, 0755); err != nil {
		return errors.Wrapf(err, "failed to create migration directory %q", m.Path)
	}

	var migrations, err = m.ReadMigrations()
	if err != nil {
		return errors.Wrap(err, "failed to read migrations")
	}
	m.storeMigrations(migrations)

	var planned = make([]*MigrationFile, 0)
	for head := registeredApps.Front(); head != nil; head = head.Next() {
		var appName = head.Key

		var lastName string
		if last := m.GetLastMigration(appName); last != nil {
			lastName = last.Name
		}

		var planner = &Planner{App: appName, Now: m.Now}
		mig, err := planner.Plan(
			currentModels(appName, head.Value),
			m.snapshotModels(appName),
			lastName,
		)
		if err != nil {
			return errors.Wrapf(err, "MakeMigrations: failed to plan migration for app %q", appName)
		}
		if mig == nil {
			continue
		}

		planned = append(planned, mig)
	}

	for _, mig := range planned {
		if err := m.WriteMigration(mig); err != nil {
			return err
		}
		m.Migrations[mig.AppName] = append(m.Migrations[mig.AppName], mig)
	}

	return nil
}

// Migrate applies every unapplied migration, in dependency order, through
// the schema editor.
func (m *MigrationEngine) Migrate() error {
	if err := m.SchemaEditor.Setup(); err != nil {
		return errors.Wrap(err, "failed to setup schema editor")
	}

	var migrations, err = m.ReadMigrations()
	if err != nil {
		return errors.Wrap(err, "failed to read migrations")
	}
	m.storeMigrations(migrations)

	for _, mig := range migrations {
		var hasApplied, err = m.SchemaEditor.HasMigration(mig.AppName, mig.Name)
		if err != nil {
			return errors.Wrapf(
				err, "failed to check if migration %q has been applied", mig.Name,
			)
		}
		if hasApplied {
			continue
		}

		if err := SIGNAL_PRE_MIGRATE.Send(&MigrationSignal{Engine: m, Migration: mig}); err != nil {
			return errors.Wrapf(err, "pre-migrate signal failed for %q", mig.Name)
		}

		if err := m.apply(mig); err != nil {
			return errors.Wrapf(err, "failed to apply migration %q", mig.Name)
		}

		if err := m.SchemaEditor.StoreMigration(mig.AppName, mig.Name); err != nil {
			return errors.Wrapf(err, "failed to store migration %q", mig.Name)
		}

		if err := SIGNAL_POST_MIGRATE.Send(&MigrationSignal{Engine: m, Migration: mig}); err != nil {
			return errors.Wrapf(err, "post-migrate signal failed for %q", mig.Name)
		}
	}

	return nil
}

func (m *MigrationEngine) apply(mig *MigrationFile) error {
	for _, op := range mig.Operations {
		m.Log(op, mig)

		var model = NewModelDescriptorOf(mig.AppName, op.Table, op.Model, op.Fields...)

		var err error
		switch op.Type {
		case OperationCreateModel:
			err = m.SchemaEditor.CreateModel(model)
		case OperationAddField:
			err = m.SchemaEditor.AddField(model, *op.Field)
		case OperationRemoveField:
			err = m.SchemaEditor.RemoveField(model, *op.Field)
		case OperationRemoveModel:
			err = m.SchemaEditor.DropModel(model)
		default:
			return fmt.Errorf("unknown operation type %s", op.Type)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteMigration writes the migration file to the engine's migration
// directory.
func (m *MigrationEngine) WriteMigration(migration *MigrationFile) error {
	var filePath = filepath.Join(m.Path, migration.AppName, migration.FileName())

	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("migration file %q already exists", filePath)
	}

	var data, err = json.MarshalIndent(migration, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to marshal migration file %q", filePath)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %q", filepath.Dir(filePath))
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write migration file %q", filePath)
	}

	return nil
}

// ReadMigrations loads every migration file under the engine's path and
// returns them in dependency order.
func (m *MigrationEngine) ReadMigrations() ([]*MigrationFile, error) {
	var directories, err = os.ReadDir(m.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read migration directory %q", m.Path)
	}

	var migrations = make([]*MigrationFile, 0)
	for _, appMigrationDir := range directories {
		if !appMigrationDir.IsDir() {
			continue
		}

		var workingPath = filepath.Join(m.Path, appMigrationDir.Name())
		files, err := os.ReadDir(workingPath)
		if err != nil {
			return nil, errors.Wrapf(
				err, "failed to read migration directory %q", workingPath,
			)
		}

		for _, file := range files {
			if file.IsDir() || filepath.Ext(file.Name()) != MIGRATION_FILE_SUFFIX {
				continue
			}

			var filePath = filepath.Join(workingPath, file.Name())
			migrationFileBytes, err := os.ReadFile(filePath)
			if err != nil {
				return nil, errors.Wrapf(
					err, "failed to read migration file %q", filePath,
				)
			}

			var migrationFile = new(MigrationFile)
			if err := json.Unmarshal(migrationFileBytes, migrationFile); err != nil {
				return nil, errors.Wrapf(
					err, "failed to unmarshal migration file %q", filePath,
				)
			}

			var name = strings.TrimSuffix(file.Name(), MIGRATION_FILE_SUFFIX)
			if _, err := MigrationSequence(name); err != nil {
				return nil, errors.Wrapf(
					err, "failed to parse migration file name %q", file.Name(),
				)
			}

			migrationFile.AppName = appMigrationDir.Name()
			migrationFile.Name = name
			migrations = append(migrations, migrationFile)
		}
	}

	return SortMigrations(migrations)
}
