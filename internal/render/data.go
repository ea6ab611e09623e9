package render

import (
	"context"
	"fmt"
	"math"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/appconfig"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/permission"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/reference"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/transform"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// DataProvider serves component data payloads: table rows, chart series, and
// metric values, permission-gated and reference-enriched.
type DataProvider struct {
	registry *appconfig.Registry
	gate     *permission.Gate
	records  store.Store
	refs     *reference.Resolver
	engine   *transform.Engine
}

// NewDataProvider creates a DataProvider.
func NewDataProvider(registry *appconfig.Registry, gate *permission.Gate, records store.Store, refs *reference.Resolver, engine *transform.Engine) *DataProvider {
	return &DataProvider{
		registry: registry,
		gate:     gate,
		records:  records,
		refs:     refs,
		engine:   engine,
	}
}

// SubmitPayload is the body of a component submit request.
type SubmitPayload struct {
	RecordID string       `json:"record_id,omitempty"`
	Values   model.Record `json:"values"`
}

// ComponentData fetches the data payload for a component, dispatching on its
// type. Form and tabs components carry no data payload of their own.
func (d *DataProvider) ComponentData(ctx context.Context, rctx *model.RequestContext, pageID, componentID string, params store.ListParams) (any, error) {
	def, err := d.lookup(rctx, pageID, componentID)
	if err != nil {
		return nil, err
	}
	props, err := def.DecodeProps()
	if err != nil {
		return nil, model.NewInternalError()
	}

	switch p := props.(type) {
	case model.DataTableProps:
		return d.tableData(ctx, rctx, p, params)
	case model.ChartProps:
		return d.chartData(ctx, rctx, p)
	case model.MetricCardProps:
		return d.metricData(ctx, rctx, p)
	default:
		return nil, model.NewBadRequestError(
			fmt.Sprintf("component %q has no data payload", componentID),
		)
	}
}

// Submit handles a form write: validate, gate, then create or update.
func (d *DataProvider) Submit(ctx context.Context, rctx *model.RequestContext, pageID, componentID string, payload SubmitPayload) (model.Record, error) {
	def, err := d.lookup(rctx, pageID, componentID)
	if err != nil {
		return nil, err
	}
	props, err := def.DecodeProps()
	if err != nil {
		return nil, model.NewInternalError()
	}

	values := payload.Values
	if values == nil {
		values = model.Record{}
	}

	switch p := props.(type) {
	case model.DataTableProps:
		if problems := ValidateRules(p.FormValidationRules, values); len(problems) > 0 {
			return nil, model.NewValidationError(FieldErrors(problems))
		}
		if payload.RecordID != "" {
			return d.update(ctx, rctx, p.Resource, payload.RecordID, values)
		}
		return d.create(ctx, rctx, p.Resource, values)

	case model.SimpleFormProps:
		if problems := ValidateRules(p.FormValidationRules, values); len(problems) > 0 {
			return nil, model.NewValidationError(FieldErrors(problems))
		}
		if p.SubmitAction == "update" {
			id := payload.RecordID
			if id == "" {
				id = p.RecordID
			}
			if id == "" {
				return nil, model.NewBadRequestError("update form requires a record id")
			}
			return d.update(ctx, rctx, p.Resource, id, values)
		}
		return d.create(ctx, rctx, p.Resource, values)

	default:
		return nil, model.NewBadRequestError(
			fmt.Sprintf("component %q does not accept submissions", componentID),
		)
	}
}

func (d *DataProvider) create(ctx context.Context, rctx *model.RequestContext, resource string, values model.Record) (model.Record, error) {
	if !d.gate.Can(rctx.Role, resource, "create") {
		return nil, model.NewForbiddenError(
			fmt.Sprintf("role %q cannot create %q records", rctx.Role, resource),
		)
	}
	return d.records.Create(ctx, resource, values)
}

func (d *DataProvider) update(ctx context.Context, rctx *model.RequestContext, resource, id string, values model.Record) (model.Record, error) {
	if !d.gate.Can(rctx.Role, resource, "edit") {
		return nil, model.NewForbiddenError(
			fmt.Sprintf("role %q cannot edit %q records", rctx.Role, resource),
		)
	}
	return d.records.Update(ctx, resource, id, values)
}

// tableData lists rows for a DataTable, resolving reference columns to their
// display labels.
func (d *DataProvider) tableData(ctx context.Context, rctx *model.RequestContext, p model.DataTableProps, params store.ListParams) (model.TableData, error) {
	if !d.gate.Can(rctx.Role, p.Resource, "view") {
		return model.TableData{}, model.NewForbiddenError(
			fmt.Sprintf("role %q cannot view %q records", rctx.Role, p.Resource),
		)
	}

	params.Filter = mergeFilters(p.Filter, params.Filter)
	if params.Search != nil {
		params.Search.Fields = d.searchableColumns(p)
	}
	if params.Pagination == nil {
		perPage := p.PageSize
		if perPage <= 0 {
			perPage = defaultTablePageSize
		}
		params.Pagination = &store.Pagination{Page: 1, PerPage: perPage}
	}

	result, err := d.records.GetList(ctx, p.Resource, params)
	if err != nil {
		return model.TableData{}, err
	}

	for _, col := range p.Columns {
		if col.Reference == nil {
			continue
		}
		for _, row := range result.Data {
			row[col.Field] = d.refs.Resolve(ctx, row[col.Field], *col.Reference)
		}
	}

	page, perPage := 1, len(result.Data)
	if params.Pagination != nil {
		page, perPage = params.Pagination.Page, params.Pagination.PerPage
	}
	return model.TableData{
		Rows:    result.Data,
		Total:   result.Total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// searchableColumns lists the table columns a text query can match: those
// backed by a text or select field of the resource.
func (d *DataProvider) searchableColumns(p model.DataTableProps) []string {
	def, ok := d.registry.GetResource(p.Resource)
	if !ok {
		return nil
	}
	var fields []string
	for _, col := range p.Columns {
		f, exists := def.Fields[col.Field]
		if exists && (f.Type == "text" || f.Type == "select") {
			fields = append(fields, col.Field)
		}
	}
	return fields
}

func (d *DataProvider) chartData(ctx context.Context, rctx *model.RequestContext, p model.ChartProps) (model.ChartData, error) {
	if !d.gate.Can(rctx.Role, p.Resource, "view") {
		return model.ChartData{}, model.NewForbiddenError(
			fmt.Sprintf("role %q cannot view %q records", rctx.Role, p.Resource),
		)
	}

	rows, err := d.engine.Series(ctx, transform.ChartQuery{
		Resource:  p.Resource,
		ChartType: p.ChartType,
		XField:    p.XField,
		YField:    p.YField,
		Transform: p.Transform,
		GroupBy:   p.GroupBy,
		Filter:    p.Filter,
		XRef:      p.XFieldReference,
		YRef:      p.YFieldReference,
	})
	if err != nil {
		return model.ChartData{}, err
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return model.ChartData{Rows: rows}, nil
}

func (d *DataProvider) metricData(ctx context.Context, rctx *model.RequestContext, p model.MetricCardProps) (model.MetricData, error) {
	if !d.gate.Can(rctx.Role, p.Resource, "view") {
		return model.MetricData{}, model.NewForbiddenError(
			fmt.Sprintf("role %q cannot view %q records", rctx.Role, p.Resource),
		)
	}

	value, err := d.engine.Scalar(ctx, p.Resource, store.AggregateParams{
		Field:  p.Field,
		Fn:     p.Aggregate,
		Filter: p.Filter,
	})
	if err != nil {
		return model.MetricData{}, err
	}

	// min/max over an empty set produce infinities, which JSON cannot carry.
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return model.MetricData{Value: nil}, nil
	}
	return model.MetricData{Value: value}, nil
}

// Options lists reference dropdown options for a resource.
func (d *DataProvider) Options(ctx context.Context, rctx *model.RequestContext, ref model.ReferenceDef) ([]model.OptionDescriptor, error) {
	if !d.gate.Can(rctx.Role, ref.Resource, "view") {
		return nil, model.NewForbiddenError(
			fmt.Sprintf("role %q cannot view %q records", rctx.Role, ref.Resource),
		)
	}
	return d.refs.Options(ctx, ref)
}

// lookup finds a component after checking page access.
func (d *DataProvider) lookup(rctx *model.RequestContext, pageID, componentID string) (model.ComponentDef, error) {
	pageDef, ok := d.registry.GetPage(pageID)
	if !ok {
		return model.ComponentDef{}, model.NewNotFoundError(
			fmt.Sprintf("page %q not found", pageID),
		)
	}
	if !permission.CanAccessPage(rctx.Role, pageDef) {
		return model.ComponentDef{}, model.NewForbiddenError(
			fmt.Sprintf("role %q cannot access page %q", rctx.Role, pageID),
		)
	}
	def, ok := d.registry.GetComponent(pageID, componentID)
	if !ok {
		return model.ComponentDef{}, model.NewNotFoundError(
			fmt.Sprintf("component %q not found on page %q", componentID, pageID),
		)
	}
	return def, nil
}

// mergeFilters overlays the request filter on the component's configured
// filter. Both nil stays nil, preserving the unfiltered fast path.
func mergeFilters(base, request map[string]any) map[string]any {
	if base == nil && request == nil {
		return nil
	}
	merged := make(map[string]any, len(base)+len(request))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range request {
		merged[k] = v
	}
	return merged
}
