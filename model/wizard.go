package model

import "time"

// Wizard instance statuses.
const (
	WizardStatusActive    = "active"
	WizardStatusCompleted = "completed"
	WizardStatusCancelled = "cancelled"
)

// WizardInstance is one server-held wizard session. A session walks a
// WizardForm's steps linearly: values accumulate per step, only the current
// step's required fields are validated on advance, and the final submit
// writes the merged values through the record store.
type WizardInstance struct {
	ID          string    `json:"id"`
	PageID      string    `json:"page_id"`
	ComponentID string    `json:"component_id"`
	Resource    string    `json:"resource"`
	StepIndex   int       `json:"step_index"`
	StepCount   int       `json:"step_count"`
	Values      Record    `json:"values"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OnFinalStep reports whether the instance is positioned on its last step.
func (w *WizardInstance) OnFinalStep() bool {
	return w.StepIndex >= w.StepCount-1
}
