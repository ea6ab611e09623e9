package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// ValidateRules checks form values against their validation rules and
// returns one message per failing field. An empty map means the form is
// valid. Violations are data, not errors: the transport wraps them in a
// VALIDATION_ERROR envelope and the write never happens.
func ValidateRules(rules map[string]model.ValidationRules, values model.Record) map[string]string {
	problems := make(map[string]string)

	for field, r := range rules {
		value, present := values[field]

		if r.Required && isBlank(value, present) {
			problems[field] = "This field is required"
			continue
		}
		if !present || value == nil {
			continue
		}

		s, isString := value.(string)
		if !isString {
			continue
		}
		if r.MinLength != nil && len(s) < *r.MinLength {
			problems[field] = fmt.Sprintf("Must be at least %d characters", *r.MinLength)
			continue
		}
		if r.MaxLength != nil && len(s) > *r.MaxLength {
			problems[field] = fmt.Sprintf("Must be at most %d characters", *r.MaxLength)
			continue
		}
		if r.Pattern != "" {
			re, err := regexp.Compile(r.Pattern)
			if err == nil && !re.MatchString(s) {
				problems[field] = "Invalid format"
			}
		}
	}

	return problems
}

// ValidateRequired checks only the required constraint of the given fields.
// The wizard engine uses this per step: Advance validates the current step's
// required fields and nothing else.
func ValidateRequired(fields []model.FormFieldDef, values model.Record) map[string]string {
	problems := make(map[string]string)
	for _, f := range fields {
		if !f.Required {
			continue
		}
		value, present := values[f.Field]
		if isBlank(value, present) {
			problems[f.Field] = "This field is required"
		}
	}
	return problems
}

// FieldErrors converts a field message map into envelope details, sorted by
// field name for stable responses.
func FieldErrors(problems map[string]string) []model.FieldError {
	out := make([]model.FieldError, 0, len(problems))
	for field, msg := range problems {
		out = append(out, model.FieldError{Field: field, Code: "INVALID", Message: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// isBlank reports whether a value fails the required check: absent, nil, or
// a whitespace-only string.
func isBlank(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
