package store

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// SchemaSet holds one openapi3 schema per resource, derived from the
// resource field definitions. Stores run every seed, create, and update
// payload through it so type errors surface at write time instead of at
// render time.
//
// Only declared fields are checked; undeclared fields pass through untouched
// because records are open maps by design. Required-ness is deliberately not
// enforced here — updates are shallow merges and may carry any subset of
// fields. The form validator owns required checks.
type SchemaSet struct {
	schemas map[string]map[string]*openapi3.Schema // resource → field → schema
}

// NewSchemaSet derives per-field schemas for every resource.
func NewSchemaSet(resources map[string]model.ResourceDef) *SchemaSet {
	set := &SchemaSet{schemas: make(map[string]map[string]*openapi3.Schema, len(resources))}
	for name, def := range resources {
		fields := make(map[string]*openapi3.Schema, len(def.Fields))
		for fieldName, fieldDef := range def.Fields {
			if s := fieldSchema(fieldDef); s != nil {
				fields[fieldName] = s
			}
		}
		set.schemas[name] = fields
	}
	return set
}

// fieldSchema maps a FieldDef to an openapi3 schema. Reference fields get no
// type constraint: their values mirror whatever the target resource stores.
func fieldSchema(def model.FieldDef) *openapi3.Schema {
	switch def.Type {
	case "text":
		s := openapi3.NewStringSchema()
		if def.Pattern != "" {
			s = s.WithPattern(def.Pattern)
		}
		return s
	case "date":
		return openapi3.NewStringSchema()
	case "select":
		s := openapi3.NewStringSchema()
		if len(def.Options) > 0 {
			values := make([]any, len(def.Options))
			for i, o := range def.Options {
				values[i] = o
			}
			s = s.WithEnum(values...)
		}
		return s
	case "number":
		s := openapi3.NewFloat64Schema()
		if def.Min != nil {
			s = s.WithMin(*def.Min)
		}
		if def.Max != nil {
			s = s.WithMax(*def.Max)
		}
		return s
	case "boolean":
		return openapi3.NewBoolSchema()
	case "reference":
		return nil
	default:
		return nil
	}
}

// Validate checks a record's declared fields against the resource's field
// schemas. Absent and null fields are skipped. Returns nil when the record
// is valid or the resource is unknown to the set.
func (s *SchemaSet) Validate(resource string, rec model.Record) []model.FieldError {
	fields, ok := s.schemas[resource]
	if !ok {
		return nil
	}

	var errs []model.FieldError
	for fieldName, schema := range fields {
		value, present := rec[fieldName]
		if !present || value == nil {
			continue
		}
		if err := schema.VisitJSON(value); err != nil {
			errs = append(errs, model.FieldError{
				Field:   fieldName,
				Code:    "SCHEMA",
				Message: fmt.Sprintf("invalid value for %s: %v", fieldName, err),
			})
		}
	}
	return errs
}
