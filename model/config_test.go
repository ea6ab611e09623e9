package model

import (
	"encoding/json"
	"testing"
)

func decodeComponent(t *testing.T, typ, props string) any {
	t.Helper()
	def := ComponentDef{Type: typ, Props: json.RawMessage(props)}
	p, err := def.DecodeProps()
	if err != nil {
		t.Fatalf("DecodeProps error: %v", err)
	}
	return p
}

func TestMetricCardProps_absentFilterDefaultsToEmpty(t *testing.T) {
	p := decodeComponent(t, ComponentMetricCard,
		`{"resource": "employees", "field": "salary", "aggregate": "avg"}`).(MetricCardProps)
	if p.Filter == nil || len(p.Filter) != 0 {
		t.Errorf("Filter = %v, want empty non-nil map", p.Filter)
	}
}

func TestMetricCardProps_explicitNullFilterStaysNil(t *testing.T) {
	p := decodeComponent(t, ComponentMetricCard,
		`{"resource": "employees", "aggregate": "count", "filter": null}`).(MetricCardProps)
	if p.Filter != nil {
		t.Errorf("Filter = %v, want nil", p.Filter)
	}
}

func TestMetricCardProps_populatedFilterKept(t *testing.T) {
	p := decodeComponent(t, ComponentMetricCard,
		`{"resource": "employees", "aggregate": "sum", "filter": {"dept": "eng"}}`).(MetricCardProps)
	if p.Filter["dept"] != "eng" {
		t.Errorf("Filter = %v, want dept=eng", p.Filter)
	}
}

func TestChartProps_absentFilterDefaultsToEmpty(t *testing.T) {
	p := decodeComponent(t, ComponentChart,
		`{"resource": "employees", "chartType": "bar", "xField": "dept", "yField": "salary", "transform": "sum"}`).(ChartProps)
	if p.Filter == nil || len(p.Filter) != 0 {
		t.Errorf("Filter = %v, want empty non-nil map", p.Filter)
	}
}

func TestChartProps_explicitNullFilterStaysNil(t *testing.T) {
	p := decodeComponent(t, ComponentChart,
		`{"resource": "employees", "chartType": "bar", "transform": "count", "filter": null}`).(ChartProps)
	if p.Filter != nil {
		t.Errorf("Filter = %v, want nil", p.Filter)
	}
}
