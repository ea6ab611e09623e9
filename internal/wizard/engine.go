package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/appconfig"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/permission"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/render"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// Engine drives wizard sessions. Step transitions are strictly linear:
// Advance moves exactly one step forward after validating the current step's
// required fields, Back moves one step backward with no validation at all,
// and Submit is only legal on the final step.
type Engine struct {
	registry  *appconfig.Registry
	gate      *permission.Gate
	records   store.Store
	instances *InstanceStore
}

// NewEngine creates a wizard Engine.
func NewEngine(registry *appconfig.Registry, gate *permission.Gate, records store.Store, instances *InstanceStore) *Engine {
	return &Engine{
		registry:  registry,
		gate:      gate,
		records:   records,
		instances: instances,
	}
}

// Start creates a new session for the WizardForm at pageID/componentID.
func (e *Engine) Start(ctx context.Context, rctx *model.RequestContext, pageID, componentID string) (model.WizardInstance, error) {
	props, err := e.wizardProps(rctx, pageID, componentID)
	if err != nil {
		return model.WizardInstance{}, err
	}

	if !e.gate.Can(rctx.Role, props.Resource, writeAction(props)) {
		return model.WizardInstance{}, model.NewForbiddenError(
			fmt.Sprintf("role %q cannot submit this wizard", rctx.Role),
		)
	}

	now := time.Now().UTC()
	inst := model.WizardInstance{
		ID:          uuid.NewString(),
		PageID:      pageID,
		ComponentID: componentID,
		Resource:    props.Resource,
		StepIndex:   0,
		StepCount:   len(props.Steps),
		Values:      model.Record{},
		Status:      model.WizardStatusActive,
		Version:     1,
		CreatedBy:   rctx.SubjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e.instances.Put(&inst)
	return inst, nil
}

// Get returns the caller's session.
func (e *Engine) Get(ctx context.Context, rctx *model.RequestContext, instanceID string) (model.WizardInstance, error) {
	return e.owned(rctx, instanceID)
}

// Advance merges the submitted values, validates the current step's required
// fields, and moves one step forward. On validation failure nothing is
// persisted and the step does not move.
func (e *Engine) Advance(ctx context.Context, rctx *model.RequestContext, instanceID string, values model.Record, version int) (model.WizardInstance, error) {
	inst, err := e.active(rctx, instanceID, version)
	if err != nil {
		return model.WizardInstance{}, err
	}
	if inst.OnFinalStep() {
		return model.WizardInstance{}, model.NewWizardStepOrderError(
			"already on the final step; submit instead",
		)
	}

	props, err := e.wizardProps(rctx, inst.PageID, inst.ComponentID)
	if err != nil {
		return model.WizardInstance{}, err
	}

	merged := mergeValues(inst.Values, values)
	step := props.Steps[inst.StepIndex]
	if problems := render.ValidateRequired(step.Fields, merged); len(problems) > 0 {
		return model.WizardInstance{}, model.NewValidationError(render.FieldErrors(problems))
	}

	inst.Values = merged
	inst.StepIndex++
	inst.Version++
	inst.UpdatedAt = time.Now().UTC()
	e.instances.Put(&inst)
	return inst, nil
}

// Back moves one step backward. It never validates.
func (e *Engine) Back(ctx context.Context, rctx *model.RequestContext, instanceID string, values model.Record, version int) (model.WizardInstance, error) {
	inst, err := e.active(rctx, instanceID, version)
	if err != nil {
		return model.WizardInstance{}, err
	}
	if inst.StepIndex == 0 {
		return model.WizardInstance{}, model.NewWizardStepOrderError("already on the first step")
	}

	inst.Values = mergeValues(inst.Values, values)
	inst.StepIndex--
	inst.Version++
	inst.UpdatedAt = time.Now().UTC()
	e.instances.Put(&inst)
	return inst, nil
}

// Submit writes the accumulated values through the record store. Only legal
// on the final step, after every step's required fields pass.
func (e *Engine) Submit(ctx context.Context, rctx *model.RequestContext, instanceID string, values model.Record, version int) (model.Record, model.WizardInstance, error) {
	inst, err := e.active(rctx, instanceID, version)
	if err != nil {
		return nil, model.WizardInstance{}, err
	}
	if !inst.OnFinalStep() {
		return nil, model.WizardInstance{}, model.NewWizardStepOrderError(
			fmt.Sprintf("cannot submit from step %d of %d", inst.StepIndex+1, inst.StepCount),
		)
	}

	props, err := e.wizardProps(rctx, inst.PageID, inst.ComponentID)
	if err != nil {
		return nil, model.WizardInstance{}, err
	}

	merged := mergeValues(inst.Values, values)
	problems := make(map[string]string)
	for _, step := range props.Steps {
		for field, msg := range render.ValidateRequired(step.Fields, merged) {
			problems[field] = msg
		}
	}
	if len(problems) > 0 {
		return nil, model.WizardInstance{}, model.NewValidationError(render.FieldErrors(problems))
	}

	if !e.gate.Can(rctx.Role, props.Resource, writeAction(props)) {
		return nil, model.WizardInstance{}, model.NewForbiddenError(
			fmt.Sprintf("role %q cannot submit this wizard", rctx.Role),
		)
	}

	var record model.Record
	if props.SubmitAction == "update" {
		if props.RecordID == "" {
			return nil, model.WizardInstance{}, model.NewBadRequestError("update wizard requires a record id")
		}
		record, err = e.records.Update(ctx, props.Resource, props.RecordID, merged)
	} else {
		record, err = e.records.Create(ctx, props.Resource, merged)
	}
	if err != nil {
		return nil, model.WizardInstance{}, err
	}

	inst.Values = merged
	inst.Status = model.WizardStatusCompleted
	inst.Version++
	inst.UpdatedAt = time.Now().UTC()
	e.instances.Put(&inst)
	return record, inst, nil
}

// Cancel abandons an active session.
func (e *Engine) Cancel(ctx context.Context, rctx *model.RequestContext, instanceID string, version int) (model.WizardInstance, error) {
	inst, err := e.active(rctx, instanceID, version)
	if err != nil {
		return model.WizardInstance{}, err
	}
	inst.Status = model.WizardStatusCancelled
	inst.Version++
	inst.UpdatedAt = time.Now().UTC()
	e.instances.Put(&inst)
	return inst, nil
}

// owned fetches an instance and checks the caller started it.
func (e *Engine) owned(rctx *model.RequestContext, instanceID string) (model.WizardInstance, error) {
	inst, ok := e.instances.Get(instanceID)
	if !ok {
		return model.WizardInstance{}, model.NewWizardNotFoundError(instanceID)
	}
	if inst.CreatedBy != rctx.SubjectID {
		return model.WizardInstance{}, model.NewForbiddenError("wizard instance belongs to another user")
	}
	return inst, nil
}

// active fetches an owned instance, requiring it active and at the expected
// version. A version mismatch means a concurrent mutation won.
func (e *Engine) active(rctx *model.RequestContext, instanceID string, version int) (model.WizardInstance, error) {
	inst, err := e.owned(rctx, instanceID)
	if err != nil {
		return model.WizardInstance{}, err
	}
	if inst.Status != model.WizardStatusActive {
		return model.WizardInstance{}, model.NewWizardNotActiveError(instanceID, inst.Status)
	}
	if version > 0 && version != inst.Version {
		return model.WizardInstance{}, model.NewConflictError(
			fmt.Sprintf("wizard instance %q is at version %d, not %d", instanceID, inst.Version, version),
		)
	}
	return inst, nil
}

// wizardProps resolves the WizardForm component a session points at. The
// config can be hot-swapped mid-session, so steps are re-read every call.
func (e *Engine) wizardProps(rctx *model.RequestContext, pageID, componentID string) (model.WizardFormProps, error) {
	pageDef, ok := e.registry.GetPage(pageID)
	if !ok {
		return model.WizardFormProps{}, model.NewNotFoundError(
			fmt.Sprintf("page %q not found", pageID),
		)
	}
	if !permission.CanAccessPage(rctx.Role, pageDef) {
		return model.WizardFormProps{}, model.NewForbiddenError(
			fmt.Sprintf("role %q cannot access page %q", rctx.Role, pageID),
		)
	}
	def, ok := e.registry.GetComponent(pageID, componentID)
	if !ok || def.Type != model.ComponentWizardForm {
		return model.WizardFormProps{}, model.NewNotFoundError(
			fmt.Sprintf("wizard component %q not found on page %q", componentID, pageID),
		)
	}
	props, err := def.DecodeProps()
	if err != nil {
		return model.WizardFormProps{}, model.NewInternalError()
	}
	wp, ok := props.(model.WizardFormProps)
	if !ok {
		return model.WizardFormProps{}, model.NewInternalError()
	}
	if len(wp.Steps) == 0 {
		return model.WizardFormProps{}, model.NewBadRequestError("wizard has no steps")
	}
	return wp, nil
}

func writeAction(props model.WizardFormProps) string {
	if props.SubmitAction == "update" {
		return "edit"
	}
	return "create"
}

func mergeValues(base, overlay model.Record) model.Record {
	merged := make(model.Record, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}
