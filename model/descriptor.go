package model

// Descriptors are the fully-resolved view models served to clients. They are
// derived from AppConfig definitions, filtered by the caller's role, and
// carry the endpoints a client needs to fetch data or submit writes.

// AppDescriptor summarizes the application for the shell.
type AppDescriptor struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Roles       []string `json:"roles"`
}

// NavigationEntry is one sidebar item visible to the caller's role.
type NavigationEntry struct {
	PageID string `json:"page_id"`
	Title  string `json:"title"`
	Path   string `json:"path"`
	Icon   string `json:"icon,omitempty"`
	Order  int    `json:"order"`
}

// PageDescriptor is a resolved page: zones in config order, each component
// resolved for the caller.
type PageDescriptor struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Path       string           `json:"path"`
	LayoutType string           `json:"layout_type"`
	Zones      []ZoneDescriptor `json:"zones"`
}

// ZoneDescriptor is a resolved zone.
type ZoneDescriptor struct {
	Name       string                `json:"name"`
	Components []ComponentDescriptor `json:"components"`
}

// ComponentDescriptor is the resolved form of one component. Exactly one of
// the typed fields is set, matching Type.
type ComponentDescriptor struct {
	ID     string            `json:"id"` // "{zone}:{index}" within the page
	Type   string            `json:"type"`
	Table  *TableDescriptor  `json:"table,omitempty"`
	Form   *FormDescriptor   `json:"form,omitempty"`
	Wizard *WizardDescriptor `json:"wizard,omitempty"`
	Chart  *ChartDescriptor  `json:"chart,omitempty"`
	Metric *MetricDescriptor `json:"metric,omitempty"`
	Tabs   *TabsDescriptor   `json:"tabs,omitempty"`
}

// TableDescriptor describes a CRUD table with its permission-gated
// affordances resolved for the caller's role.
type TableDescriptor struct {
	Resource        string                     `json:"resource"`
	Title           string                     `json:"title,omitempty"`
	Columns         []ColumnDescriptor         `json:"columns"`
	PageSize        int                        `json:"page_size"`
	CanCreate       bool                       `json:"can_create"`
	CanEdit         bool                       `json:"can_edit"`
	CanDelete       bool                       `json:"can_delete"`
	DataEndpoint    string                     `json:"data_endpoint"`
	SubmitEndpoint  string                     `json:"submit_endpoint,omitempty"`
	FormFields      []FormFieldDescriptor      `json:"form_fields,omitempty"`
	ValidationRules map[string]ValidationRules `json:"validation_rules,omitempty"`
}

// ColumnDescriptor describes one table column.
type ColumnDescriptor struct {
	Field       string `json:"field"`
	Label       string `json:"label"`
	Type        string `json:"type,omitempty"`
	Sortable    bool   `json:"sortable"`
	IsReference bool   `json:"is_reference"`
}

// FormDescriptor describes a single-step form.
type FormDescriptor struct {
	Resource        string                     `json:"resource"`
	Title           string                     `json:"title,omitempty"`
	Fields          []FormFieldDescriptor      `json:"fields"`
	SubmitAction    string                     `json:"submit_action"`
	RecordID        string                     `json:"record_id,omitempty"`
	RedirectPath    string                     `json:"redirect_path,omitempty"`
	SubmitEndpoint  string                     `json:"submit_endpoint"`
	ValidationRules map[string]ValidationRules `json:"validation_rules,omitempty"`
}

// FormFieldDescriptor describes one resolved input field. Reference fields
// carry their options endpoint so clients can populate dropdowns.
type FormFieldDescriptor struct {
	Field           string             `json:"field"`
	Label           string             `json:"label"`
	Type            string             `json:"type"`
	Required        bool               `json:"required"`
	Options         []OptionDescriptor `json:"options,omitempty"`
	OptionsEndpoint string             `json:"options_endpoint,omitempty"`
	Placeholder     string             `json:"placeholder,omitempty"`
	DefaultValue    any                `json:"default_value,omitempty"`
}

// OptionDescriptor is one label/value pair for a select input.
type OptionDescriptor struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// WizardDescriptor describes a multi-step form and where to start a session.
type WizardDescriptor struct {
	Resource      string                 `json:"resource"`
	Title         string                 `json:"title,omitempty"`
	Steps         []WizardStepDescriptor `json:"steps"`
	SubmitAction  string                 `json:"submit_action"`
	StartEndpoint string                 `json:"start_endpoint"`
}

// WizardStepDescriptor is one resolved wizard step.
type WizardStepDescriptor struct {
	Title  string                `json:"title"`
	Fields []FormFieldDescriptor `json:"fields"`
}

// ChartDescriptor describes a chart; its series come from DataEndpoint.
type ChartDescriptor struct {
	Title        string `json:"title,omitempty"`
	ChartType    string `json:"chart_type"`
	XField       string `json:"x_field"`
	YField       string `json:"y_field"`
	DataEndpoint string `json:"data_endpoint"`
}

// MetricDescriptor describes a metric card; its value comes from DataEndpoint.
type MetricDescriptor struct {
	Title        string `json:"title,omitempty"`
	Icon         string `json:"icon,omitempty"`
	Color        string `json:"color,omitempty"`
	DataEndpoint string `json:"data_endpoint"`
}

// TabsDescriptor describes a tabbed container. When LoadOnClick is set, tab
// contents are omitted and clients fetch each ContentEndpoint on first
// activation; otherwise Component is resolved inline.
type TabsDescriptor struct {
	Layout      string          `json:"layout,omitempty"`
	LoadOnClick bool            `json:"load_on_click"`
	Tabs        []TabDescriptor `json:"tabs"`
}

// TabDescriptor is one tab.
type TabDescriptor struct {
	Title           string               `json:"title"`
	ContentEndpoint string               `json:"content_endpoint,omitempty"`
	Component       *ComponentDescriptor `json:"component,omitempty"`
}

// TableData is the data payload for a DataTable component.
type TableData struct {
	Rows    []Record `json:"rows"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
}

// ChartData is the data payload for a Chart component. Row keys depend on the
// grouping mode, so rows stay open maps.
type ChartData struct {
	Rows []map[string]any `json:"rows"`
}

// MetricData is the data payload for a MetricCard component.
type MetricData struct {
	Value any `json:"value"`
}
