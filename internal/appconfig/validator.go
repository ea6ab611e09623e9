package appconfig

import (
	"fmt"
	"regexp"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// VError describes a single validation finding in a config.
type VError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e VError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validator checks configs structurally and referentially. Structural
// problems are fatal: they make a component unrenderable. Referential
// problems (a component naming a resource that does not exist, a permission
// matrix naming an undeclared role) degrade to empty views at request time,
// so they are reported as warnings and the config is still served.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the whole config and returns fatal errors and warnings
// separately.
func (v *Validator) Validate(cfg model.AppConfig) (errs, warns []VError) {
	roles := make(map[string]bool, len(cfg.Auth.Roles))
	for _, r := range cfg.Auth.Roles {
		roles[r] = true
	}

	for name, def := range cfg.Resources {
		prefix := fmt.Sprintf("resources.%s", name)
		e, w := v.validateResource(prefix, def, cfg, roles)
		errs = append(errs, e...)
		warns = append(warns, w...)
	}

	for i, u := range cfg.Auth.Users {
		if u.Role != "" && !roles[u.Role] {
			warns = append(warns, VError{
				Path:    fmt.Sprintf("auth.users[%d].role", i),
				Code:    "REF_NOT_FOUND",
				Message: fmt.Sprintf("role %q not declared in auth.roles", u.Role),
			})
		}
	}

	pageIDs := make(map[string]bool, len(cfg.Pages))
	for i, p := range cfg.Pages {
		prefix := fmt.Sprintf("pages[%d]", i)
		if p.ID == "" {
			errs = append(errs, VError{Path: prefix + ".id", Code: "REQUIRED", Message: "id is required"})
		}
		if pageIDs[p.ID] {
			errs = append(errs, VError{Path: prefix + ".id", Code: "DUPLICATE", Message: fmt.Sprintf("duplicate page id %q", p.ID)})
		}
		pageIDs[p.ID] = true
		if p.Path == "" {
			errs = append(errs, VError{Path: prefix + ".path", Code: "REQUIRED", Message: "path is required"})
		}
		for _, role := range p.RoleAccess {
			if !roles[role] {
				warns = append(warns, VError{
					Path:    prefix + ".roleAccess",
					Code:    "REF_NOT_FOUND",
					Message: fmt.Sprintf("role %q not declared in auth.roles", role),
				})
			}
		}
		for zi, z := range p.Zones {
			for ci, c := range z.Components {
				cp := fmt.Sprintf("%s.zones[%d].components[%d]", prefix, zi, ci)
				e, w := v.validateComponent(cp, c, cfg)
				errs = append(errs, e...)
				warns = append(warns, w...)
			}
		}
	}

	return errs, warns
}

var validFieldTypes = map[string]bool{
	"text": true, "number": true, "boolean": true,
	"date": true, "select": true, "reference": true,
}

func (v *Validator) validateResource(prefix string, def model.ResourceDef, cfg model.AppConfig, roles map[string]bool) (errs, warns []VError) {
	for fname, f := range def.Fields {
		fp := fmt.Sprintf("%s.fields.%s", prefix, fname)
		if f.Type != "" && !validFieldTypes[f.Type] {
			errs = append(errs, VError{Path: fp + ".type", Code: "INVALID_ENUM", Message: fmt.Sprintf("invalid field type %q", f.Type)})
		}
		if f.Pattern != "" {
			if _, err := regexp.Compile(f.Pattern); err != nil {
				errs = append(errs, VError{Path: fp + ".pattern", Code: "INVALID_PATTERN", Message: err.Error()})
			}
		}
		if f.Reference != nil {
			warns = append(warns, v.checkReference(fp+".reference", *f.Reference, cfg)...)
		}
	}

	for role := range def.Permissions {
		if !roles[role] {
			warns = append(warns, VError{
				Path:    prefix + ".permissions",
				Code:    "REF_NOT_FOUND",
				Message: fmt.Sprintf("role %q not declared in auth.roles", role),
			})
		}
	}

	return errs, warns
}

var (
	validChartTypes = map[string]bool{
		"bar": true, "line": true, "pie": true, "area": true, "doughnut": true,
	}
	validTransforms = map[string]bool{"sum": true, "avg": true, "count": true}
	validAggregates = map[string]bool{
		"count": true, "sum": true, "avg": true, "min": true, "max": true,
	}
	validSubmitActions = map[string]bool{"create": true, "update": true}
)

func (v *Validator) validateComponent(prefix string, c model.ComponentDef, cfg model.AppConfig) (errs, warns []VError) {
	props, err := c.DecodeProps()
	if err != nil {
		errs = append(errs, VError{Path: prefix, Code: "INVALID_COMPONENT", Message: err.Error()})
		return errs, warns
	}

	switch p := props.(type) {
	case model.DataTableProps:
		re, rw := v.checkResource(prefix+".resource", p.Resource, cfg)
		errs = append(errs, re...)
		warns = append(warns, rw...)
		if len(p.Columns) == 0 {
			errs = append(errs, VError{Path: prefix + ".columns", Code: "REQUIRED", Message: "at least one column is required"})
		}
		if p.PageSize < 0 || p.PageSize > 200 {
			errs = append(errs, VError{Path: prefix + ".pageSize", Code: "RANGE", Message: "pageSize must be 0-200"})
		}
		for field, rules := range p.FormValidationRules {
			if rules.Pattern != "" {
				if _, err := regexp.Compile(rules.Pattern); err != nil {
					errs = append(errs, VError{
						Path:    fmt.Sprintf("%s.formValidationRules.%s.pattern", prefix, field),
						Code:    "INVALID_PATTERN",
						Message: err.Error(),
					})
				}
			}
		}

	case model.SimpleFormProps:
		re, rw := v.checkResource(prefix+".resource", p.Resource, cfg)
		errs = append(errs, re...)
		warns = append(warns, rw...)
		if p.SubmitAction != "" && !validSubmitActions[p.SubmitAction] {
			errs = append(errs, VError{Path: prefix + ".submitAction", Code: "INVALID_ENUM", Message: fmt.Sprintf("invalid submit action %q", p.SubmitAction)})
		}
		if p.SubmitAction == "update" && p.RecordID == "" {
			errs = append(errs, VError{Path: prefix + ".recordId", Code: "REQUIRED", Message: "recordId is required for update forms"})
		}

	case model.WizardFormProps:
		re, rw := v.checkResource(prefix+".resource", p.Resource, cfg)
		errs = append(errs, re...)
		warns = append(warns, rw...)
		if len(p.Steps) == 0 {
			errs = append(errs, VError{Path: prefix + ".steps", Code: "REQUIRED", Message: "at least one step is required"})
		}
		if p.SubmitAction != "" && !validSubmitActions[p.SubmitAction] {
			errs = append(errs, VError{Path: prefix + ".submitAction", Code: "INVALID_ENUM", Message: fmt.Sprintf("invalid submit action %q", p.SubmitAction)})
		}

	case model.ChartProps:
		re, rw := v.checkResource(prefix+".resource", p.Resource, cfg)
		errs = append(errs, re...)
		warns = append(warns, rw...)
		if p.ChartType == "" {
			errs = append(errs, VError{Path: prefix + ".chartType", Code: "REQUIRED", Message: "chartType is required"})
		} else if !validChartTypes[p.ChartType] {
			errs = append(errs, VError{Path: prefix + ".chartType", Code: "INVALID_ENUM", Message: fmt.Sprintf("invalid chart type %q", p.ChartType)})
		}
		if p.Transform == "" {
			errs = append(errs, VError{Path: prefix + ".transform", Code: "REQUIRED", Message: "transform is required"})
		} else if !validTransforms[p.Transform] {
			errs = append(errs, VError{Path: prefix + ".transform", Code: "INVALID_ENUM", Message: fmt.Sprintf("invalid transform %q", p.Transform)})
		}
		if p.XFieldReference != nil {
			warns = append(warns, v.checkReference(prefix+".xFieldReference", *p.XFieldReference, cfg)...)
		}
		if p.YFieldReference != nil {
			warns = append(warns, v.checkReference(prefix+".yFieldReference", *p.YFieldReference, cfg)...)
		}

	case model.MetricCardProps:
		re, rw := v.checkResource(prefix+".resource", p.Resource, cfg)
		errs = append(errs, re...)
		warns = append(warns, rw...)
		if p.Aggregate != "" && !validAggregates[p.Aggregate] {
			errs = append(errs, VError{Path: prefix + ".aggregate", Code: "INVALID_ENUM", Message: fmt.Sprintf("invalid aggregate %q", p.Aggregate)})
		}

	case model.TabsProps:
		if len(p.Tabs) == 0 {
			errs = append(errs, VError{Path: prefix + ".tabs", Code: "REQUIRED", Message: "at least one tab is required"})
		}
		for i, tab := range p.Tabs {
			tp := fmt.Sprintf("%s.tabs[%d].component", prefix, i)
			if tab.Component.Type == model.ComponentTabs {
				errs = append(errs, VError{Path: tp, Code: "INVALID_COMPONENT", Message: "tabs cannot nest tabs"})
				continue
			}
			e, w := v.validateComponent(tp, tab.Component, cfg)
			errs = append(errs, e...)
			warns = append(warns, w...)
		}
	}

	return errs, warns
}

// checkResource flags a missing resource name as fatal: a data-bound
// component without one can never render. A name that merely fails to
// resolve degrades to an empty view, so it stays a warning.
func (v *Validator) checkResource(path, resource string, cfg model.AppConfig) (errs, warns []VError) {
	if resource == "" {
		return []VError{{Path: path, Code: "REQUIRED", Message: "resource is required"}}, nil
	}
	if _, ok := cfg.Resources[resource]; !ok {
		return nil, []VError{{
			Path:    path,
			Code:    "REF_NOT_FOUND",
			Message: fmt.Sprintf("resource %q not found", resource),
		}}
	}
	return nil, nil
}

// checkReference reports warnings for dangling reference targets.
func (v *Validator) checkReference(path string, ref model.ReferenceDef, cfg model.AppConfig) []VError {
	var warns []VError
	target, ok := cfg.Resources[ref.Resource]
	if !ok {
		return []VError{{
			Path:    path + ".resource",
			Code:    "REF_NOT_FOUND",
			Message: fmt.Sprintf("resource %q not found", ref.Resource),
		}}
	}
	if ref.DisplayField != "" {
		if _, ok := target.Fields[ref.DisplayField]; !ok && ref.DisplayField != "id" {
			warns = append(warns, VError{
				Path:    path + ".displayField",
				Code:    "REF_NOT_FOUND",
				Message: fmt.Sprintf("field %q not found in resource %q", ref.DisplayField, ref.Resource),
			})
		}
	}
	if ref.ValueField != "" {
		if _, ok := target.Fields[ref.ValueField]; !ok && ref.ValueField != "id" {
			warns = append(warns, VError{
				Path:    path + ".valueField",
				Code:    "REF_NOT_FOUND",
				Message: fmt.Sprintf("field %q not found in resource %q", ref.ValueField, ref.Resource),
			})
		}
	}
	return warns
}
