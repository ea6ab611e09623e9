package transform

import (
	"context"
	"testing"
	"time"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/reference"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	records, err := store.NewMemoryStore(map[string]model.ResourceDef{
		"expenses": {
			Fields: map[string]model.FieldDef{
				"amount": {Type: "number"},
				"month":  {Type: "text"},
			},
			Data: []model.Record{
				{"id": "x1", "month": "jan", "amount": float64(100), "dept": "d1"},
				{"id": "x2", "month": "jan", "amount": float64(50), "dept": "d2"},
				{"id": "x3", "month": "feb", "amount": float64(70), "dept": "d1"},
			},
		},
		"departments": {
			Fields: map[string]model.FieldDef{
				"name": {Type: "text"},
			},
			Data: []model.Record{
				{"id": "d1", "name": "Engineering"},
				{"id": "d2", "name": "Operations"},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewMemoryStore error: %v", err)
	}
	refs := reference.NewResolver(records, time.Minute, 10)
	return NewEngine(records, refs)
}

func TestEngine_Series_plainSumPerXValue(t *testing.T) {
	e := newTestEngine(t)

	rows, err := e.Series(context.Background(), ChartQuery{
		Resource:  "expenses",
		ChartType: "bar",
		XField:    "month",
		YField:    "amount",
		Transform: "sum",
	})
	if err != nil {
		t.Fatalf("Series error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	// First-seen order: jan before feb.
	if rows[0]["month"] != "jan" || rows[0]["amount"] != float64(150) {
		t.Errorf("rows[0] = %v, want {month: jan, amount: 150}", rows[0])
	}
	if rows[1]["month"] != "feb" || rows[1]["amount"] != float64(70) {
		t.Errorf("rows[1] = %v, want {month: feb, amount: 70}", rows[1])
	}
}

func TestEngine_Series_groupedBarFlattensToSingleRow(t *testing.T) {
	e := newTestEngine(t)

	rows, err := e.Series(context.Background(), ChartQuery{
		Resource:  "expenses",
		ChartType: "bar",
		XField:    "month",
		YField:    "amount",
		Transform: "sum",
		GroupBy:   "dept",
	})
	if err != nil {
		t.Fatalf("Series error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 flattened row", len(rows))
	}
	row := rows[0]
	if row["month"] != AllGroupsLabel {
		t.Errorf("x value = %v, want %q", row["month"], AllGroupsLabel)
	}
	if row["d1"] != float64(170) {
		t.Errorf("d1 = %v, want 170", row["d1"])
	}
	if row["d2"] != float64(50) {
		t.Errorf("d2 = %v, want 50", row["d2"])
	}
}

func TestEngine_Series_groupedLineEmitsRowPerGroup(t *testing.T) {
	e := newTestEngine(t)

	rows, err := e.Series(context.Background(), ChartQuery{
		Resource:  "expenses",
		ChartType: "line",
		XField:    "month",
		YField:    "amount",
		Transform: "avg",
		GroupBy:   "dept",
	})
	if err != nil {
		t.Fatalf("Series error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0]["month"] != "d1" || rows[0]["amount"] != float64(85) {
		t.Errorf("rows[0] = %v, want {month: d1, amount: 85}", rows[0])
	}
	if rows[1]["month"] != "d2" || rows[1]["amount"] != float64(50) {
		t.Errorf("rows[1] = %v, want {month: d2, amount: 50}", rows[1])
	}
}

func TestEngine_Series_referenceEnrichmentBeforePartitioning(t *testing.T) {
	e := newTestEngine(t)

	// x carries a reference: partitioning must happen on the display labels,
	// so d1 rows across months land under "Engineering".
	rows, err := e.Series(context.Background(), ChartQuery{
		Resource:  "expenses",
		ChartType: "pie",
		XField:    "dept",
		YField:    "amount",
		Transform: "sum",
		XRef:      &model.ReferenceDef{Resource: "departments", DisplayField: "name", ValueField: "id"},
	})
	if err != nil {
		t.Fatalf("Series error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0]["dept"] != "Engineering" || rows[0]["amount"] != float64(170) {
		t.Errorf("rows[0] = %v, want {dept: Engineering, amount: 170}", rows[0])
	}
	if rows[1]["dept"] != "Operations" || rows[1]["amount"] != float64(50) {
		t.Errorf("rows[1] = %v, want {dept: Operations, amount: 50}", rows[1])
	}
}

func TestEngine_Series_filterApplied(t *testing.T) {
	e := newTestEngine(t)

	rows, err := e.Series(context.Background(), ChartQuery{
		Resource:  "expenses",
		ChartType: "bar",
		XField:    "month",
		YField:    "amount",
		Transform: "count",
		Filter:    map[string]any{"dept": "d1"},
	})
	if err != nil {
		t.Fatalf("Series error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0]["amount"] != float64(1) || rows[1]["amount"] != float64(1) {
		t.Errorf("counts = %v, %v; want 1, 1", rows[0]["amount"], rows[1]["amount"])
	}
}

func TestEngine_Series_unknownTransform(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Series(context.Background(), ChartQuery{
		Resource:  "expenses",
		XField:    "month",
		YField:    "amount",
		Transform: "median",
	})
	envErr, ok := err.(*model.ErrorEnvelope)
	if !ok {
		t.Fatalf("error type = %T, want *model.ErrorEnvelope", err)
	}
	if envErr.Code != model.ErrUnsupportedAggregate {
		t.Errorf("error code = %s, want %s", envErr.Code, model.ErrUnsupportedAggregate)
	}
}

func TestEngine_Scalar_passthrough(t *testing.T) {
	e := newTestEngine(t)

	v, err := e.Scalar(context.Background(), "expenses", store.AggregateParams{
		Field: "amount", Fn: "sum", Filter: map[string]any{"month": "jan"},
	})
	if err != nil {
		t.Fatalf("Scalar error: %v", err)
	}
	if v != 150 {
		t.Errorf("Scalar = %v, want 150", v)
	}
}
