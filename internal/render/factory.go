// Package render resolves config components into the view descriptors and
// data payloads served to clients: tables with reference labels, forms with
// dropdown options, chart series, metric values, tabbed containers.
package render

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/appconfig"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/permission"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// Factory resolves the component tagged union into typed descriptors with
// the caller's affordances and the endpoints to fetch data from.
type Factory struct {
	gate *permission.Gate
}

// NewFactory creates a component Factory.
func NewFactory(gate *permission.Gate) *Factory {
	return &Factory{gate: gate}
}

// defaultTablePageSize applies when a DataTable does not set one.
const defaultTablePageSize = 10

func dataEndpoint(pageID, componentID string) string {
	return fmt.Sprintf("/ui/pages/%s/components/%s/data", pageID, componentID)
}

func submitEndpoint(pageID, componentID string) string {
	return fmt.Sprintf("/ui/pages/%s/components/%s/submit", pageID, componentID)
}

func contentEndpoint(pageID, componentID string) string {
	return fmt.Sprintf("/ui/pages/%s/components/%s", pageID, componentID)
}

func optionsEndpoint(ref model.ReferenceDef) string {
	q := url.Values{}
	q.Set("display_field", ref.DisplayField)
	q.Set("value_field", ref.ValueField)
	return fmt.Sprintf("/ui/resources/%s/options?%s", ref.Resource, q.Encode())
}

// Resolve builds the descriptor for one component. Props were validated at
// config load, so a decode failure here means the registry served a config
// that never passed validation.
func (f *Factory) Resolve(ctx context.Context, role, pageID, componentID string, def model.ComponentDef) (model.ComponentDescriptor, error) {
	props, err := def.DecodeProps()
	if err != nil {
		return model.ComponentDescriptor{}, model.NewInternalError()
	}

	desc := model.ComponentDescriptor{ID: componentID, Type: def.Type}

	switch p := props.(type) {
	case model.DataTableProps:
		desc.Table = f.resolveTable(role, pageID, componentID, p)
	case model.SimpleFormProps:
		desc.Form = f.resolveForm(pageID, componentID, p)
	case model.WizardFormProps:
		desc.Wizard = f.resolveWizard(pageID, componentID, p)
	case model.ChartProps:
		desc.Chart = &model.ChartDescriptor{
			Title:        p.Title,
			ChartType:    p.ChartType,
			XField:       p.XField,
			YField:       p.YField,
			DataEndpoint: dataEndpoint(pageID, componentID),
		}
	case model.MetricCardProps:
		desc.Metric = &model.MetricDescriptor{
			Title:        p.Title,
			Icon:         p.Icon,
			Color:        p.Color,
			DataEndpoint: dataEndpoint(pageID, componentID),
		}
	case model.TabsProps:
		tabs, err := f.resolveTabs(ctx, role, pageID, componentID, p)
		if err != nil {
			return model.ComponentDescriptor{}, err
		}
		desc.Tabs = tabs
	}

	return desc, nil
}

func (f *Factory) resolveTable(role, pageID, componentID string, p model.DataTableProps) *model.TableDescriptor {
	desc := &model.TableDescriptor{
		Resource:        p.Resource,
		Title:           p.Title,
		PageSize:        p.PageSize,
		CanCreate:       f.gate.Can(role, p.Resource, "create"),
		CanEdit:         f.gate.Can(role, p.Resource, "edit"),
		CanDelete:       f.gate.Can(role, p.Resource, "delete"),
		DataEndpoint:    dataEndpoint(pageID, componentID),
		ValidationRules: p.FormValidationRules,
	}
	if desc.PageSize <= 0 {
		desc.PageSize = defaultTablePageSize
	}
	if desc.CanCreate || desc.CanEdit {
		desc.SubmitEndpoint = submitEndpoint(pageID, componentID)
		desc.FormFields = resolveFormFields(p.FormFields)
	}
	for _, col := range p.Columns {
		desc.Columns = append(desc.Columns, model.ColumnDescriptor{
			Field:       col.Field,
			Label:       col.Label,
			Type:        col.Type,
			Sortable:    col.Sortable,
			IsReference: col.Reference != nil,
		})
	}
	return desc
}

func (f *Factory) resolveForm(pageID, componentID string, p model.SimpleFormProps) *model.FormDescriptor {
	action := p.SubmitAction
	if action == "" {
		action = "create"
	}
	return &model.FormDescriptor{
		Resource:        p.Resource,
		Title:           p.Title,
		Fields:          resolveFormFields(p.Fields),
		SubmitAction:    action,
		RecordID:        p.RecordID,
		RedirectPath:    p.RedirectPath,
		SubmitEndpoint:  submitEndpoint(pageID, componentID),
		ValidationRules: p.FormValidationRules,
	}
}

func (f *Factory) resolveWizard(pageID, componentID string, p model.WizardFormProps) *model.WizardDescriptor {
	action := p.SubmitAction
	if action == "" {
		action = "create"
	}
	desc := &model.WizardDescriptor{
		Resource:      p.Resource,
		Title:         p.Title,
		SubmitAction:  action,
		StartEndpoint: fmt.Sprintf("/ui/wizards/%s/%s/start", pageID, componentID),
	}
	for _, step := range p.Steps {
		desc.Steps = append(desc.Steps, model.WizardStepDescriptor{
			Title:  step.Title,
			Fields: resolveFormFields(step.Fields),
		})
	}
	return desc
}

// resolveTabs builds the tab container. With loadOnClick the tab contents
// are left out and each tab carries the endpoint to fetch them on first
// activation; otherwise contents are resolved inline.
func (f *Factory) resolveTabs(ctx context.Context, role, pageID, componentID string, p model.TabsProps) (*model.TabsDescriptor, error) {
	desc := &model.TabsDescriptor{
		Layout:      p.Layout,
		LoadOnClick: p.LoadOnClick,
	}
	for i, tab := range p.Tabs {
		td := model.TabDescriptor{Title: tab.Title}
		nestedID := appconfig.TabComponentID(componentID, i)
		if p.LoadOnClick {
			td.ContentEndpoint = contentEndpoint(pageID, nestedID)
		} else {
			nested, err := f.Resolve(ctx, role, pageID, nestedID, tab.Component)
			if err != nil {
				return nil, err
			}
			td.Component = &nested
		}
		desc.Tabs = append(desc.Tabs, td)
	}
	return desc, nil
}

// resolveFormFields maps config form fields to descriptors, attaching the
// options endpoint for reference dropdowns.
func resolveFormFields(fields []model.FormFieldDef) []model.FormFieldDescriptor {
	out := make([]model.FormFieldDescriptor, 0, len(fields))
	for _, field := range fields {
		fd := model.FormFieldDescriptor{
			Field:        field.Field,
			Label:        field.Label,
			Type:         field.Type,
			Required:     field.Required,
			Placeholder:  field.Placeholder,
			DefaultValue: field.DefaultValue,
		}
		for _, opt := range field.Options {
			fd.Options = append(fd.Options, model.OptionDescriptor{Label: opt.Label, Value: opt.Value})
		}
		if field.Reference != nil {
			fd.OptionsEndpoint = optionsEndpoint(*field.Reference)
		}
		out = append(out, fd)
	}
	return out
}
