package migrator

import (
	"reflect"
	"slices"

	"github.com/Nigel2392/go-django-migrator/internal"
	"github.com/Nigel2392/go-django/src/core/attrs"
	"github.com/Nigel2392/go-django/src/core/contenttypes"
	"github.com/elliotchance/orderedmap/v2"
)

const (
	// AttrUseInDBKey can be set to false in a field's attributes to keep it
	// out of the database schema entirely.
	AttrUseInDBKey = "migrator.use_in_db"
)

// registeredApps maps app label to its models, keyed by content type name.
// Ordered maps keep registration order so extraction is deterministic.
var registeredApps = orderedmap.NewOrderedMap[string, *orderedmap.OrderedMap[string, attrs.Definer]]()

// Register adds models to an app so the engine can diff them against the
// recorded migrations.
func Register(appName string, objects ...attrs.Definer) {
	var models, ok = registeredApps.Get(appName)
	if !ok {
		models = orderedmap.NewOrderedMap[string, attrs.Definer]()
		registeredApps.Set(appName, models)
	}

	for _, obj := range objects {
		var cType = contenttypes.NewContentType(obj)

		if contenttypes.DefinitionForType(cType.TypeName()) == nil {
			contenttypes.Register(&contenttypes.ContentTypeDefinition{
				ContentObject: obj,
			})
		}

		models.Set(cType.TypeName(), obj)
	}
}

// appForModel returns the app label a model type was registered under, or ""
// when the model is unknown (the descriptor then treats the reference as
// local to the owning app).
func appForModel(typeName string) string {
	for head := registeredApps.Front(); head != nil; head = head.Next() {
		if _, ok := head.Value.Get(typeName); ok {
			return head.Key
		}
	}
	return ""
}

// NewModelDescriptor extracts the current shape of a model into an immutable
// descriptor. Primary fields are moved to the front of the field list.
func NewModelDescriptor(appName string, object attrs.Definer) *ModelDescriptor {
	var (
		defs   = object.FieldDefs()
		fields = defs.Fields()
		cType  = contenttypes.NewContentType(object)
	)

	slices.SortStableFunc(fields, func(a, b attrs.Field) int {
		if a.IsPrimary() && !b.IsPrimary() {
			return -1
		}
		if !a.IsPrimary() && b.IsPrimary() {
			return 1
		}
		return 0
	})

	var m = &ModelDescriptor{
		App:    appName,
		Table:  tableName(object, defs),
		Model:  cType.TypeName(),
		Fields: orderedmap.NewOrderedMap[string, FieldDescriptor](),
	}

	for _, field := range fields {
		var atts = field.Attrs()

		var attrUseInDB, ok = internal.GetFromAttrs[bool](atts, AttrUseInDBKey)
		if !ok {
			attrUseInDB = true
		}
		if !attrUseInDB {
			continue
		}

		attrUnique, _ := internal.GetFromAttrs[bool](atts, attrs.AttrUniqueKey)
		attrAutoIncrement, _ := internal.GetFromAttrs[bool](atts, attrs.AttrAutoIncrementKey)

		var typeName = fieldTypeName(field)
		var rel *Relation
		var fRel = field.Rel()
		if fRel != nil {
			var (
				target     = fRel.Model()
				targetType = contenttypes.NewContentType(target)
				targetDefs = target.FieldDefs()
			)

			var targetField = fRel.Field()
			if targetField == nil {
				targetField = targetDefs.Primary()
			}

			rel = &Relation{
				Model:  targetType.TypeName(),
				App:    appForModel(targetType.TypeName()),
				Table:  tableName(target, targetDefs),
				Column: targetField.ColumnName(),
			}

			// A foreign key column stores the referenced column's value, not
			// the related struct.
			typeName = fieldTypeName(targetField)
		}

		m.Fields.Set(field.ColumnName(), FieldDescriptor{
			Name:     field.Name(),
			Column:   field.ColumnName(),
			Type:     typeName,
			Primary:  field.IsPrimary(),
			Auto:     attrAutoIncrement,
			Nullable: field.AllowNull(),
			Unique:   attrUnique,
			Rel:      rel,
		})
	}

	return m
}

// tableName falls back to the struct type name for models that never declare
// an explicit table name.
func tableName(object attrs.Definer, defs attrs.Definitions) string {
	if name := defs.TableName(); name != "" {
		return name
	}
	var rt = reflect.TypeOf(object)
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return rt.Name()
}

func fieldTypeName(field attrs.FieldDefinition) string {
	var typ = field.Type()
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ.String()
}
