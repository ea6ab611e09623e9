// Package transform reduces record collections into chart series and scalar
// metrics: group-by partitioning plus sum/avg/count reduction.
package transform

import (
	"context"
	"time"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/reference"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// AllGroupsLabel is the x value of the single flattened row emitted for
// grouped bar, pie, and doughnut charts.
const AllGroupsLabel = "All Departments"

// ChartQuery describes one chart's data requirements.
type ChartQuery struct {
	Resource  string
	ChartType string // bar|line|pie|area|doughnut
	XField    string
	YField    string
	Transform string // sum|avg|count
	GroupBy   string
	Filter    map[string]any
	XRef      *model.ReferenceDef
	YRef      *model.ReferenceDef
}

// Engine turns raw resource rows into plotted series and scalar metrics.
type Engine struct {
	records store.Store
	refs    *reference.Resolver
	stats   Instrumentor
}

// Instrumentor receives transform durations. Satisfied by the observability
// metrics without importing it here.
type Instrumentor interface {
	RecordTransform(resource, kind string, duration time.Duration)
}

// NewEngine creates an Engine over the given store and resolver.
func NewEngine(records store.Store, refs *reference.Resolver) *Engine {
	return &Engine{records: records, refs: refs}
}

// SetInstrumentor attaches transform metrics. Call before sharing the engine.
func (e *Engine) SetInstrumentor(stats Instrumentor) {
	e.stats = stats
}

func (e *Engine) observe(resource, kind string, start time.Time) {
	if e.stats != nil {
		e.stats.RecordTransform(resource, kind, time.Since(start))
	}
}

// Scalar computes a metric card value through the store's aggregate
// operation, inheriting its filter semantics unchanged.
func (e *Engine) Scalar(ctx context.Context, resource string, p store.AggregateParams) (float64, error) {
	defer e.observe(resource, "scalar", time.Now())
	return e.records.Aggregate(ctx, resource, p)
}

// Series computes chart rows.
//
// When x or y carry a reference, each value is resolved to its display label
// BEFORE partitioning, so grouping happens on what the user sees. Reordering
// these steps would silently split groups whenever several raw keys share a
// display label.
//
// Grouped bar, pie, and doughnut charts flatten all groups into a single row
// with one key per group value; grouped line and area charts emit one row
// per group. Ungrouped charts emit one row per distinct x value in
// first-seen order.
func (e *Engine) Series(ctx context.Context, q ChartQuery) ([]map[string]any, error) {
	if !validTransform(q.Transform) {
		return nil, model.NewUnsupportedAggregateError(q.Transform)
	}
	defer e.observe(q.Resource, "series", time.Now())

	result, err := e.records.GetList(ctx, q.Resource, store.ListParams{Filter: q.Filter})
	if err != nil {
		return nil, err
	}

	rows := e.enrich(ctx, result.Data, q)

	if q.GroupBy != "" {
		return e.groupedSeries(rows, q), nil
	}
	return e.plainSeries(rows, q), nil
}

// enriched pairs a record with its resolved x and y values.
type enriched struct {
	x, y  any
	group any
}

func (e *Engine) enrich(ctx context.Context, records []model.Record, q ChartQuery) []enriched {
	out := make([]enriched, len(records))
	for i, rec := range records {
		x := rec[q.XField]
		if q.XRef != nil {
			x = e.refs.Resolve(ctx, x, *q.XRef)
		}
		y := rec[q.YField]
		if q.YRef != nil {
			y = e.refs.Resolve(ctx, y, *q.YRef)
		}
		out[i] = enriched{x: x, y: y, group: rec[q.GroupBy]}
	}
	return out
}

// plainSeries partitions by x value and emits one row per distinct x.
func (e *Engine) plainSeries(rows []enriched, q ChartQuery) []map[string]any {
	order, groups := partition(rows, func(r enriched) any { return r.x })

	series := make([]map[string]any, 0, len(order))
	for _, key := range order {
		series = append(series, map[string]any{
			q.XField: key,
			q.YField: reduce(q.Transform, groups[key]),
		})
	}
	return series
}

// groupedSeries partitions by the group field and shapes rows per chart type.
func (e *Engine) groupedSeries(rows []enriched, q ChartQuery) []map[string]any {
	order, groups := partition(rows, func(r enriched) any { return r.group })

	switch q.ChartType {
	case "bar", "pie", "doughnut":
		row := map[string]any{q.XField: AllGroupsLabel}
		for _, key := range order {
			row[stringify(key)] = reduce(q.Transform, groups[key])
		}
		return []map[string]any{row}
	default: // line, area
		series := make([]map[string]any, 0, len(order))
		for _, key := range order {
			series = append(series, map[string]any{
				q.XField: key,
				q.YField: reduce(q.Transform, groups[key]),
			})
		}
		return series
	}
}

// partition splits rows into groups in first-seen key order. Composite keys
// (maps, slices) are excluded — they can never match a reference value
// either.
func partition(rows []enriched, keyOf func(enriched) any) ([]any, map[any][]enriched) {
	var order []any
	groups := make(map[any][]enriched)
	for _, r := range rows {
		key := keyOf(r)
		switch key.(type) {
		case map[string]any, []any:
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}
	return order, groups
}

// reduce folds one group's y values. Groups are non-empty by construction,
// so avg never divides by zero here.
func reduce(transform string, group []enriched) float64 {
	switch transform {
	case "count":
		return float64(len(group))
	case "sum":
		var sum float64
		for _, r := range group {
			sum += store.JSNumber(r.y)
		}
		return sum
	case "avg":
		var sum float64
		for _, r := range group {
			sum += store.JSNumber(r.y)
		}
		return sum / float64(len(group))
	default:
		return 0
	}
}

func validTransform(t string) bool {
	switch t {
	case "sum", "avg", "count":
		return true
	}
	return false
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return store.FormatValue(v)
}
