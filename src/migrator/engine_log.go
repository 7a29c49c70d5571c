package migrator

import (
	"strings"

	"github.com/Nigel2392/go-django/src/core/logger"
)

var _ MigrationLog = &MigrationEngineConsoleLog{}

type MigrationEngineConsoleLog struct {
}

func (e *MigrationEngineConsoleLog) Log(op Operation, file *MigrationFile) {
	var actionStr strings.Builder
	actionStr.WriteString(file.AppName)
	actionStr.WriteString(" / ")
	actionStr.WriteString(file.Name)
	actionStr.WriteString(": ")

	switch op.Type {
	case OperationCreateModel:
		actionStr.WriteString("Creating table ")
		actionStr.WriteString(op.Table)
		actionStr.WriteString(" for model ")
		actionStr.WriteString(op.Model)
	case OperationRemoveModel:
		actionStr.WriteString("Dropping table ")
		actionStr.WriteString(op.Table)
		actionStr.WriteString(" for model ")
		actionStr.WriteString(op.Model)
	case OperationAddField:
		actionStr.WriteString("Adding column ")
		actionStr.WriteString(op.Table)
		actionStr.WriteString(".")
		actionStr.WriteString(op.Field.Column)
	case OperationRemoveField:
		actionStr.WriteString("Removing column ")
		actionStr.WriteString(op.Table)
		actionStr.WriteString(".")
		actionStr.WriteString(op.Field.Column)
	}

	logger.Info(actionStr.String())
}
