package model

import "fmt"

// Standard error codes.
const (
	ErrBadRequest        = "BAD_REQUEST"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrForbidden         = "FORBIDDEN"
	ErrNotFound          = "NOT_FOUND"
	ErrConflict          = "CONFLICT"
	ErrValidationError   = "VALIDATION_ERROR"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrConfigUnavailable = "CONFIG_UNAVAILABLE"
)

// Store-specific error codes.
const (
	ErrResourceNotFound     = "RESOURCE_NOT_FOUND"
	ErrRecordNotFound       = "RECORD_NOT_FOUND"
	ErrUnsupportedAggregate = "UNSUPPORTED_AGGREGATE"
)

// Wizard-specific error codes.
const (
	ErrWizardNotFound  = "WIZARD_NOT_FOUND"
	ErrWizardNotActive = "WIZARD_NOT_ACTIVE"
	ErrWizardStepOrder = "WIZARD_STEP_ORDER"
)

// ErrorEnvelope is the standard error response envelope returned by the
// runtime API. It implements the error interface.
type ErrorEnvelope struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
	TraceID string       `json:"trace_id"`
}

// Error implements the error interface.
func (e *ErrorEnvelope) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewBadRequestError returns a BAD_REQUEST error.
func NewBadRequestError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrBadRequest, Message: msg}
}

// NewUnauthorizedError returns an UNAUTHORIZED error.
func NewUnauthorizedError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrUnauthorized, Message: msg}
}

// NewForbiddenError returns a FORBIDDEN error.
func NewForbiddenError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrForbidden, Message: msg}
}

// NewNotFoundError returns a NOT_FOUND error.
func NewNotFoundError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrNotFound, Message: msg}
}

// NewResourceNotFoundError returns a RESOURCE_NOT_FOUND error for an unknown
// resource collection name.
func NewResourceNotFoundError(resource string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrResourceNotFound,
		Message: fmt.Sprintf("resource %q not found", resource),
	}
}

// NewRecordNotFoundError returns a RECORD_NOT_FOUND error for an unknown
// record id within a known resource.
func NewRecordNotFoundError(resource, id string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrRecordNotFound,
		Message: fmt.Sprintf("record %q not found in resource %q", id, resource),
	}
}

// NewUnsupportedAggregateError returns an UNSUPPORTED_AGGREGATE error for an
// unknown aggregate function name.
func NewUnsupportedAggregateError(fn string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrUnsupportedAggregate,
		Message: fmt.Sprintf("unsupported aggregate function %q", fn),
	}
}

// NewConflictError returns a CONFLICT error.
func NewConflictError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrConflict, Message: msg}
}

// NewValidationError returns a VALIDATION_ERROR with field-level details.
func NewValidationError(details []FieldError) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrValidationError,
		Message: "One or more fields are invalid",
		Details: details,
	}
}

// NewInternalError returns an INTERNAL_ERROR.
func NewInternalError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrInternalError,
		Message: "An unexpected error occurred",
	}
}

// NewWizardNotFoundError returns a WIZARD_NOT_FOUND error for an unknown or
// expired wizard instance.
func NewWizardNotFoundError(instanceID string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrWizardNotFound,
		Message: fmt.Sprintf("wizard instance %q not found", instanceID),
	}
}

// NewWizardNotActiveError returns a WIZARD_NOT_ACTIVE error for operations on
// a completed or cancelled wizard instance.
func NewWizardNotActiveError(instanceID, status string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrWizardNotActive,
		Message: fmt.Sprintf("wizard instance %q is %s", instanceID, status),
	}
}

// NewWizardStepOrderError returns a WIZARD_STEP_ORDER error for step
// transitions the linear machine does not allow.
func NewWizardStepOrderError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrWizardStepOrder, Message: msg}
}

// NewConfigUnavailableError returns a CONFIG_UNAVAILABLE error, used when the
// remote config source cannot be reached and no snapshot has been loaded yet.
func NewConfigUnavailableError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrConfigUnavailable,
		Message: "The application configuration is temporarily unavailable",
	}
}
