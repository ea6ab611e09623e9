package integration

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

func TestAggregateEndpoint_sumAndFilteredAvg(t *testing.T) {
	h := NewHarness(t, hrFixture())
	token := h.Login(t, "admin@example.com", "hunter22")

	// An empty filter still selects every record; omitting the filter
	// entirely would short-circuit to a row count.
	all := url.QueryEscape(`{}`)
	resp := h.GET(t, "/ui/resources/employees/aggregate?fn=sum&field=salary&filter="+all, token)
	h.AssertStatus(t, resp, http.StatusOK)
	var agg struct {
		Fn    string   `json:"fn"`
		Value *float64 `json:"value"`
	}
	h.ParseJSON(t, resp, &agg)
	if agg.Value == nil || *agg.Value != 220 {
		t.Errorf("sum = %v, want 220", agg.Value)
	}

	filter := url.QueryEscape(`{"dept": "eng"}`)
	resp = h.GET(t, "/ui/resources/employees/aggregate?fn=avg&field=salary&filter="+filter, token)
	h.AssertStatus(t, resp, http.StatusOK)
	h.ParseJSON(t, resp, &agg)
	if agg.Value == nil || *agg.Value != 100 {
		t.Errorf("filtered avg = %v, want 100", agg.Value)
	}
}

func TestAggregateEndpoint_emptyMinIsNull(t *testing.T) {
	h := NewHarness(t, hrFixture())
	token := h.Login(t, "admin@example.com", "hunter22")

	filter := url.QueryEscape(`{"dept": "nowhere"}`)
	resp := h.GET(t, "/ui/resources/employees/aggregate?fn=min&field=salary&filter="+filter, token)
	h.AssertStatus(t, resp, http.StatusOK)
	var agg struct {
		Value *float64 `json:"value"`
	}
	h.ParseJSON(t, resp, &agg)
	if agg.Value != nil {
		t.Errorf("min over empty set = %v, want null", *agg.Value)
	}
}

func TestAggregateEndpoint_unknownFnRejected(t *testing.T) {
	h := NewHarness(t, hrFixture())
	token := h.Login(t, "admin@example.com", "hunter22")

	all := url.QueryEscape(`{}`)
	resp := h.GET(t, "/ui/resources/employees/aggregate?fn=median&field=salary&filter="+all, token)
	h.AssertStatus(t, resp, http.StatusBadRequest)
}

func TestOptionsEndpoint_listsLabelValuePairs(t *testing.T) {
	h := NewHarness(t, hrFixture())
	token := h.Login(t, "admin@example.com", "hunter22")

	resp := h.GET(t, "/ui/resources/employees/options?display_field=name", token)
	h.AssertStatus(t, resp, http.StatusOK)
	var opts []model.OptionDescriptor
	h.ParseJSON(t, resp, &opts)
	if len(opts) != 2 {
		t.Fatalf("options = %+v, want 2", opts)
	}
	if opts[0].Label != "Ada" || opts[0].Value != "e1" {
		t.Errorf("first option = %+v", opts[0])
	}

	resp = h.GET(t, "/ui/resources/employees/options", token)
	h.AssertStatus(t, resp, http.StatusBadRequest)
}

func TestResourceAPI_viewerCannotWrite(t *testing.T) {
	h := NewHarness(t, hrFixture())
	token := h.Login(t, "viewer@example.com", "lurker99")

	resp := h.POST(t, "/ui/resources/employees/records", model.Record{"name": "Eve"}, token)
	h.AssertStatus(t, resp, http.StatusForbidden)

	resp = h.GET(t, "/ui/resources/employees/records", token)
	h.AssertStatus(t, resp, http.StatusOK)
	var list struct {
		Total int `json:"total"`
	}
	h.ParseJSON(t, resp, &list)
	if list.Total != 2 {
		t.Errorf("total = %d, want 2", list.Total)
	}
}
