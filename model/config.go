package model

import (
	"encoding/json"
	"fmt"
)

// AppConfig is the root declarative application descriptor. Everything the
// runtime serves — navigation, pages, tables, forms, charts — is interpreted
// from this document.
type AppConfig struct {
	App       AppInfo                `json:"app"`
	Auth      AuthConfig             `json:"auth"`
	Resources map[string]ResourceDef `json:"resources"`
	Pages     []PageDef              `json:"pages"`
	Settings  Settings               `json:"settings"`
}

// DefaultAppConfig returns the empty configuration the runtime falls back to
// when no config source is available. It renders an app with no resources and
// no pages rather than failing startup.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Auth:      AuthConfig{Roles: []string{}, Users: []UserDef{}},
		Resources: map[string]ResourceDef{},
		Pages:     []PageDef{},
	}
}

// AppInfo describes the application itself.
type AppInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
}

// AuthConfig holds the role catalog and the user directory used by the login
// endpoint.
type AuthConfig struct {
	Roles []string  `json:"roles"`
	Users []UserDef `json:"users"`
}

// UserDef is a configured user account.
type UserDef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Settings holds runtime behavior toggles.
type Settings struct {
	// PersistenceMode selects the record store driver: "memory", "file"
	// (SQLite), or "postgres".
	PersistenceMode string `json:"persistenceMode"`
	EnableAuth      bool   `json:"enableAuth"`
	EnableLogging   bool   `json:"enableLogging"`
}

// ResourceDef describes a named record collection: its field schema, the
// CRUD verbs it allows, its role permission matrix, and seed data.
type ResourceDef struct {
	Fields      map[string]FieldDef `json:"fields"`
	Actions     []string            `json:"actions"`
	Permissions map[string][]string `json:"permissions"`
	Data        []Record            `json:"data"`
}

// FieldDef describes one field of a resource.
type FieldDef struct {
	Type      string        `json:"type"` // text|number|boolean|date|select|reference
	Required  bool          `json:"required"`
	Options   []string      `json:"options,omitempty"`
	Reference *ReferenceDef `json:"reference,omitempty"`
	Pattern   string        `json:"pattern,omitempty"`
	Min       *float64      `json:"min,omitempty"`
	Max       *float64      `json:"max,omitempty"`
}

// ReferenceDef denotes a foreign-key-like relation: the stored value is
// expected to equal some record's ValueField in Resource, and the UI displays
// that record's DisplayField instead of the raw value.
type ReferenceDef struct {
	Resource     string `json:"resource"`
	DisplayField string `json:"displayField"`
	ValueField   string `json:"valueField"`
}

// Record is a flat untyped record living inside a resource collection.
// Identity is its "id" field.
type Record = map[string]any

// PageDef describes one routed page of the generated app.
type PageDef struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Path          string    `json:"path"`
	Icon          string    `json:"icon"`
	ShowInSidebar bool      `json:"showInSidebar"`
	SidebarOrder  int       `json:"sidebarOrder"`
	RoleAccess    []string  `json:"roleAccess"`
	LayoutType    string    `json:"layoutType"` // default|tabs|grid
	Zones         []ZoneDef `json:"zones"`
}

// ZoneDef is a named grouping of components within a page layout.
type ZoneDef struct {
	Name       string         `json:"name"`
	Components []ComponentDef `json:"components"`
}

// Component type discriminators.
const (
	ComponentDataTable  = "DataTable"
	ComponentSimpleForm = "SimpleForm"
	ComponentWizardForm = "WizardForm"
	ComponentChart      = "Chart"
	ComponentMetricCard = "MetricCard"
	ComponentTabs       = "TabsComponent"
)

// ComponentDef is the tagged union of renderable components. Props are kept
// raw at parse time and decoded into the matching typed struct once, at
// config load, so malformed props surface as load-time validation errors.
type ComponentDef struct {
	Type  string          `json:"type"`
	Props json.RawMessage `json:"props"`
}

// DecodeProps decodes the raw props into the typed struct for the component's
// kind. Unknown component types return an error.
func (c ComponentDef) DecodeProps() (any, error) {
	raw := c.Props
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch c.Type {
	case ComponentDataTable:
		var p DataTableProps
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding DataTable props: %w", err)
		}
		return p, nil
	case ComponentSimpleForm:
		var p SimpleFormProps
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding SimpleForm props: %w", err)
		}
		return p, nil
	case ComponentWizardForm:
		var p WizardFormProps
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding WizardForm props: %w", err)
		}
		return p, nil
	case ComponentChart:
		var p ChartProps
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding Chart props: %w", err)
		}
		return p, nil
	case ComponentMetricCard:
		var p MetricCardProps
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding MetricCard props: %w", err)
		}
		return p, nil
	case ComponentTabs:
		var p TabsProps
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding TabsComponent props: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown component type %q", c.Type)
	}
}

// DataTableProps configures a CRUD table over one resource.
type DataTableProps struct {
	Resource            string                     `json:"resource"`
	Title               string                     `json:"title"`
	Columns             []ColumnDef                `json:"columns"`
	Filter              map[string]any             `json:"filter"`
	PageSize            int                        `json:"pageSize"`
	FormFields          []FormFieldDef             `json:"formFields"`
	FormValidationRules map[string]ValidationRules `json:"formValidationRules"`
}

// ColumnDef describes one table column.
type ColumnDef struct {
	Field     string        `json:"field"`
	Label     string        `json:"label"`
	Type      string        `json:"type"`
	Sortable  bool          `json:"sortable"`
	Reference *ReferenceDef `json:"reference,omitempty"`
}

// ValidationRules are the client-visible form validation constraints for one
// field. Violations produce a field→message map, never an exception.
type ValidationRules struct {
	Required  bool   `json:"required"`
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}

// FormFieldDef describes one input field of a form or wizard step.
type FormFieldDef struct {
	Field        string        `json:"field"`
	Label        string        `json:"label"`
	Type         string        `json:"type"`
	Required     bool          `json:"required"`
	Options      []OptionDef   `json:"options,omitempty"`
	Reference    *ReferenceDef `json:"reference,omitempty"`
	Placeholder  string        `json:"placeholder,omitempty"`
	DefaultValue any           `json:"defaultValue,omitempty"`
}

// OptionDef is a static select option.
type OptionDef struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// SimpleFormProps configures a single-step form bound to one resource.
type SimpleFormProps struct {
	Resource            string                     `json:"resource"`
	Title               string                     `json:"title"`
	Fields              []FormFieldDef             `json:"fields"`
	SubmitAction        string                     `json:"submitAction"` // create|update
	RecordID            string                     `json:"recordId,omitempty"`
	RedirectPath        string                     `json:"redirectPath,omitempty"`
	FormValidationRules map[string]ValidationRules `json:"formValidationRules"`
}

// WizardFormProps configures a multi-step form with a linear step machine.
type WizardFormProps struct {
	Resource     string          `json:"resource"`
	Title        string          `json:"title"`
	Steps        []WizardStepDef `json:"steps"`
	SubmitAction string          `json:"submitAction"` // create|update
	RecordID     string          `json:"recordId,omitempty"`
	RedirectPath string          `json:"redirectPath,omitempty"`
}

// WizardStepDef is one step of a WizardForm.
type WizardStepDef struct {
	Title  string         `json:"title"`
	Fields []FormFieldDef `json:"fields"`
}

// filterOrDefault resolves the decoded filter against the raw props: an
// omitted filter key defaults to an empty filter that matches every record,
// while an explicit null stays nil and selects the unfiltered shortcut
// downstream.
func filterOrDefault(data []byte, decoded map[string]any) map[string]any {
	if decoded != nil {
		return decoded
	}
	var probe struct {
		Filter json.RawMessage `json:"filter"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Filter == nil {
		return map[string]any{}
	}
	return nil
}

// ChartProps configures an aggregated chart over one resource.
type ChartProps struct {
	Resource        string         `json:"resource"`
	Title           string         `json:"title"`
	ChartType       string         `json:"chartType"` // bar|line|pie|area|doughnut
	XField          string         `json:"xField"`
	YField          string         `json:"yField"`
	Transform       string         `json:"transform"` // sum|avg|count
	GroupBy         string         `json:"groupBy,omitempty"`
	Filter          map[string]any `json:"filter"`
	XFieldReference *ReferenceDef  `json:"xFieldReference,omitempty"`
	YFieldReference *ReferenceDef  `json:"yFieldReference,omitempty"`
}

// UnmarshalJSON defaults an omitted filter to an empty one. Only an explicit
// null filter reaches the aggregation layer as nil.
func (p *ChartProps) UnmarshalJSON(data []byte) error {
	type plain ChartProps
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = ChartProps(decoded)
	p.Filter = filterOrDefault(data, p.Filter)
	return nil
}

// MetricCardProps configures a single scalar metric over one resource.
type MetricCardProps struct {
	Resource  string         `json:"resource"`
	Title     string         `json:"title"`
	Field     string         `json:"field"`
	Aggregate string         `json:"aggregate"` // count|sum|avg|min|max
	Filter    map[string]any `json:"filter"`
	Icon      string         `json:"icon,omitempty"`
	Color     string         `json:"color,omitempty"`
}

// UnmarshalJSON defaults an omitted filter to an empty one, so a card without
// a filter key aggregates over the full collection instead of taking the
// row-count shortcut reserved for an explicit null.
func (p *MetricCardProps) UnmarshalJSON(data []byte) error {
	type plain MetricCardProps
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = MetricCardProps(decoded)
	p.Filter = filterOrDefault(data, p.Filter)
	return nil
}

// TabsProps configures a tabbed container of nested components.
type TabsProps struct {
	Layout      string   `json:"layout"`
	LoadOnClick bool     `json:"loadOnClick"`
	Tabs        []TabDef `json:"tabs"`
}

// TabDef is one tab with its nested component.
type TabDef struct {
	Title     string       `json:"title"`
	Component ComponentDef `json:"component"`
}
