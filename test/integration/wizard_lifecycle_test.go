package integration

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// hrFixture is an app with a seeded employees resource, an onboarding wizard,
// and one admin plus one read-only user.
func hrFixture() model.AppConfig {
	return model.AppConfig{
		App: model.AppInfo{Name: "HR", Version: "1.0.0"},
		Auth: model.AuthConfig{
			Roles: []string{"admin", "viewer"},
			Users: []model.UserDef{
				{ID: "u1", Name: "Admin", Email: "admin@example.com", Password: "hunter22", Role: "admin"},
				{ID: "u2", Name: "Viewer", Email: "viewer@example.com", Password: "lurker99", Role: "viewer"},
			},
		},
		Resources: map[string]model.ResourceDef{
			"employees": {
				Fields: map[string]model.FieldDef{
					"name":   {Type: "text"},
					"email":  {Type: "text"},
					"dept":   {Type: "text"},
					"salary": {Type: "number"},
				},
				Permissions: map[string][]string{
					"admin":  {"*"},
					"viewer": {"view"},
				},
				Data: []model.Record{
					{"id": "e1", "name": "Ada", "email": "ada@example.com", "dept": "eng", "salary": float64(100)},
					{"id": "e2", "name": "Grace", "email": "grace@example.com", "dept": "ops", "salary": float64(120)},
				},
			},
		},
		Pages: []model.PageDef{{
			ID: "onboard", Title: "Onboarding", Path: "/onboard", ShowInSidebar: true,
			Zones: []model.ZoneDef{{
				Name: "main",
				Components: []model.ComponentDef{{
					Type: model.ComponentWizardForm,
					Props: json.RawMessage(`{
						"resource": "employees",
						"submitAction": "create",
						"steps": [
							{"title": "Identity", "fields": [{"field": "name", "required": true}]},
							{"title": "Contact", "fields": [{"field": "email", "required": true}]},
							{"title": "Placement", "fields": [{"field": "dept", "required": false}]}
						]
					}`),
				}},
			}},
		}},
		Settings: model.Settings{EnableAuth: true},
	}
}

func TestWizardLifecycle_startToSubmit(t *testing.T) {
	h := NewHarness(t, hrFixture())
	token := h.Login(t, "admin@example.com", "hunter22")

	resp := h.POST(t, "/ui/wizards/onboard/main:0/start", nil, token)
	h.AssertStatus(t, resp, http.StatusCreated)
	var inst model.WizardInstance
	h.ParseJSON(t, resp, &inst)
	if inst.StepCount != 3 || inst.StepIndex != 0 || inst.Version != 1 {
		t.Fatalf("fresh instance = %+v", inst)
	}

	// Advance through identity, go back, then forward again.
	resp = h.POST(t, "/ui/wizards/instances/"+inst.ID+"/advance",
		map[string]any{"values": model.Record{"name": "Linus"}, "version": inst.Version}, token)
	h.ParseJSON(t, resp, &inst)
	if inst.StepIndex != 1 {
		t.Fatalf("after advance step = %d, want 1", inst.StepIndex)
	}

	resp = h.POST(t, "/ui/wizards/instances/"+inst.ID+"/back",
		map[string]any{"version": inst.Version}, token)
	h.ParseJSON(t, resp, &inst)
	if inst.StepIndex != 0 {
		t.Fatalf("after back step = %d, want 0", inst.StepIndex)
	}
	if inst.Values["name"] != "Linus" {
		t.Errorf("draft lost on back: %v", inst.Values)
	}

	resp = h.POST(t, "/ui/wizards/instances/"+inst.ID+"/advance",
		map[string]any{"version": inst.Version}, token)
	h.ParseJSON(t, resp, &inst)
	resp = h.POST(t, "/ui/wizards/instances/"+inst.ID+"/advance",
		map[string]any{"values": model.Record{"email": "linus@example.com"}, "version": inst.Version}, token)
	h.ParseJSON(t, resp, &inst)
	if inst.StepIndex != 2 {
		t.Fatalf("before submit step = %d, want 2", inst.StepIndex)
	}

	resp = h.POST(t, "/ui/wizards/instances/"+inst.ID+"/submit",
		map[string]any{"values": model.Record{"dept": "eng"}, "version": inst.Version}, token)
	h.AssertStatus(t, resp, http.StatusOK)
	var submitted struct {
		Record   model.Record         `json:"record"`
		Instance model.WizardInstance `json:"instance"`
	}
	h.ParseJSON(t, resp, &submitted)
	if submitted.Instance.Status != model.WizardStatusCompleted {
		t.Errorf("status = %s, want completed", submitted.Instance.Status)
	}
	if submitted.Record["name"] != "Linus" || submitted.Record["email"] != "linus@example.com" {
		t.Errorf("record = %v", submitted.Record)
	}

	// The write landed in the collection.
	resp = h.GET(t, "/ui/resources/employees/records", token)
	h.AssertStatus(t, resp, http.StatusOK)
	var list struct {
		Total int `json:"total"`
	}
	h.ParseJSON(t, resp, &list)
	if list.Total != 3 {
		t.Errorf("total = %d, want 3", list.Total)
	}
}

func TestWizardLifecycle_earlySubmitRejected(t *testing.T) {
	h := NewHarness(t, hrFixture())
	token := h.Login(t, "admin@example.com", "hunter22")

	resp := h.POST(t, "/ui/wizards/onboard/main:0/start", nil, token)
	var inst model.WizardInstance
	h.ParseJSON(t, resp, &inst)

	resp = h.POST(t, "/ui/wizards/instances/"+inst.ID+"/submit",
		map[string]any{"values": model.Record{"name": "Linus"}, "version": inst.Version}, token)
	h.AssertStatus(t, resp, http.StatusUnprocessableEntity)
}

func TestWizardLifecycle_staleVersionConflicts(t *testing.T) {
	h := NewHarness(t, hrFixture())
	token := h.Login(t, "admin@example.com", "hunter22")

	resp := h.POST(t, "/ui/wizards/onboard/main:0/start", nil, token)
	var inst model.WizardInstance
	h.ParseJSON(t, resp, &inst)

	resp = h.POST(t, "/ui/wizards/instances/"+inst.ID+"/advance",
		map[string]any{"values": model.Record{"name": "Linus"}, "version": inst.Version}, token)
	h.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// Replaying with the original version must fail.
	resp = h.POST(t, "/ui/wizards/instances/"+inst.ID+"/advance",
		map[string]any{"values": model.Record{"name": "Linus"}, "version": inst.Version}, token)
	h.AssertStatus(t, resp, http.StatusConflict)
}

func TestWizardLifecycle_cancelEndsSession(t *testing.T) {
	h := NewHarness(t, hrFixture())
	token := h.Login(t, "admin@example.com", "hunter22")

	resp := h.POST(t, "/ui/wizards/onboard/main:0/start", nil, token)
	var inst model.WizardInstance
	h.ParseJSON(t, resp, &inst)

	resp = h.POST(t, "/ui/wizards/instances/"+inst.ID+"/cancel",
		map[string]any{"version": inst.Version}, token)
	h.AssertStatus(t, resp, http.StatusOK)

	resp = h.POST(t, "/ui/wizards/instances/"+inst.ID+"/advance",
		map[string]any{"values": model.Record{"name": "x"}}, token)
	h.AssertStatus(t, resp, http.StatusConflict)
}

func TestWizardLifecycle_viewerCannotStart(t *testing.T) {
	h := NewHarness(t, hrFixture())
	token := h.Login(t, "viewer@example.com", "lurker99")

	resp := h.POST(t, "/ui/wizards/onboard/main:0/start", nil, token)
	h.AssertStatus(t, resp, http.StatusForbidden)
}

func TestSearch_respectsRoleOverHTTP(t *testing.T) {
	h := NewHarness(t, hrFixture())
	token := h.Login(t, "viewer@example.com", "lurker99")

	resp := h.GET(t, "/ui/search?q="+url.QueryEscape("ops"), token)
	h.AssertStatus(t, resp, http.StatusOK)
	var result model.SearchResponse
	h.ParseJSON(t, resp, &result)
	if result.Total != 1 {
		t.Errorf("total = %d, want 1: %+v", result.Total, result.Results)
	}
}
