package projects

import (
	"net/url"
	"strings"
)

// FormSubmission is a read-only snapshot of a posted form. It is validated
// and then handed back to the view so submitted values can be echoed.
type FormSubmission struct {
	values map[string]string
}

func NewFormSubmission(values url.Values) FormSubmission {
	copied := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			copied[key] = vals[0]
		}
	}
	return FormSubmission{values: copied}
}

// SubmissionOf builds a FormSubmission from plain key/value pairs.
func SubmissionOf(values map[string]string) FormSubmission {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return FormSubmission{values: copied}
}

// Value returns the raw submitted value, or "" when the field is absent.
func (f FormSubmission) Value(field string) string {
	return f.values[field]
}

// Has reports whether the field was submitted with a non-blank value.
// Absent and empty fields are treated the same.
func (f FormSubmission) Has(field string) bool {
	return strings.TrimSpace(f.values[field]) != ""
}

// Fields exposes a copy of the submitted values for templates.
func (f FormSubmission) Fields() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}
