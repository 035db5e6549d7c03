package projects

import (
	"strings"

	"crowdfund-go/internal/model"
)

// Form field names shared with the templates.
const (
	FieldID          = "id"
	FieldProjectID   = "project_id"
	FieldTitle       = "title"
	FieldCategory    = "category"
	FieldGoal        = "goal"
	FieldDescription = "description"
	FieldDonation    = "donation"
	FieldComment     = "comment"

	FieldFromPledged   = "from_pledged"
	FieldToPledged     = "to_pledged"
	FieldFromCollected = "from_collected"
	FieldToCollected   = "to_collected"
)

// NoCategory is the search sentinel meaning "every category".
const NoCategory = "none"

// DefaultCategory is stored when the create form omits a category.
const DefaultCategory = "Other"

// ValidationErrors is an ordered list of user-facing messages. It is
// returned as an error so callers can tell it apart from store failures.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// ValidateCreate checks the new-project form.
func ValidateCreate(sub FormSubmission) []string {
	return validateProjectForm(sub, false)
}

// ValidateEdit checks the edit form, which also requires a category.
func ValidateEdit(sub FormSubmission) []string {
	return validateProjectForm(sub, true)
}

func validateProjectForm(sub FormSubmission, requireCategory bool) []string {
	var errs []string

	if !sub.Has(FieldTitle) {
		errs = append(errs, "No title provided")
	}

	if requireCategory && !sub.Has(FieldCategory) {
		errs = append(errs, "No category provided")
	}

	if !sub.Has(FieldGoal) {
		errs = append(errs, "No pledge goal provided")
	} else if goal, ok := parseNumber(sub.Value(FieldGoal)); !ok {
		errs = append(errs, "Pledge goal needs to be a number")
	} else if goal <= 0 {
		errs = append(errs, "Pledge goal needs to be greater than zero")
	}

	if !sub.Has(FieldDescription) {
		errs = append(errs, "No description provided")
	}

	return errs
}

// ValidateDonation checks the donation form. A non-numeric value with a
// non-positive numeric prefix ("-5abc") reports both number errors.
func ValidateDonation(sub FormSubmission) []string {
	if !sub.Has(FieldDonation) {
		return []string{"Donation needs to have a value"}
	}

	var errs []string
	raw := sub.Value(FieldDonation)
	if _, ok := parseNumber(raw); !ok {
		errs = append(errs, "Donation needs to be a number")
	}
	if v, ok := parseLeadingFloat(raw); ok && v <= 0 {
		errs = append(errs, "Donation needs to be greater than zero")
	}
	return errs
}

func ValidateComment(sub FormSubmission) []string {
	if !sub.Has(FieldComment) {
		return []string{"No comment provided"}
	}
	return nil
}

type boundFields struct {
	lowerField, upperField string
	label                  string
}

var (
	pledgeBounds    = boundFields{lowerField: FieldFromPledged, upperField: FieldToPledged, label: "pledge goal"}
	collectedBounds = boundFields{lowerField: FieldFromCollected, upperField: FieldToCollected, label: "collected amount"}
)

// ValidateSearch turns the search form into criteria. Range-order errors
// come first, then negative bounds, then bounds that are not numbers.
func ValidateSearch(sub FormSubmission) (SearchCriteria, []string) {
	criteria := SearchCriteria{Category: strings.TrimSpace(sub.Value(FieldCategory))}
	if criteria.Category == "" {
		criteria.Category = NoCategory
	}

	pledge, pledgeBad := readRange(sub, pledgeBounds)
	collected, collectedBad := readRange(sub, collectedBounds)
	criteria.Pledge = pledge
	criteria.Collected = collected

	checks := []struct {
		r      Range
		fields boundFields
	}{{pledge, pledgeBounds}, {collected, collectedBounds}}

	var errs []string
	for _, item := range checks {
		if item.r.Lower != nil && item.r.Upper != nil && *item.r.Lower > *item.r.Upper {
			errs = append(errs, model.Capitalize(item.fields.label)+" lower bound can't be greater than its upper bound")
		}
	}
	for _, item := range checks {
		if item.r.Lower != nil && *item.r.Lower < 0 {
			errs = append(errs, "Please enter a positive number in "+item.fields.label+" lower bound")
		}
		if item.r.Upper != nil && *item.r.Upper < 0 {
			errs = append(errs, "Please enter a positive number in "+item.fields.label+" upper bound")
		}
	}
	errs = append(errs, pledgeBad...)
	errs = append(errs, collectedBad...)

	return criteria, errs
}

func readRange(sub FormSubmission, fields boundFields) (Range, []string) {
	var r Range
	var bad []string
	if sub.Has(fields.lowerField) {
		r.Lower, bad = readBound(sub.Value(fields.lowerField), fields.label, "lower", bad)
	}
	if sub.Has(fields.upperField) {
		r.Upper, bad = readBound(sub.Value(fields.upperField), fields.label, "upper", bad)
	}
	return r, bad
}

// readBound parses one bound. A value like "-5abc" is not a number, and its
// negative prefix is reported as well.
func readBound(raw, label, side string, bad []string) (*float64, []string) {
	if v, ok := parseNumber(raw); ok {
		return &v, bad
	}
	bad = append(bad, model.Capitalize(label)+" "+side+" bound needs to be a number")
	if v, ok := parseLeadingFloat(raw); ok && v < 0 {
		bad = append(bad, "Please enter a positive number in "+label+" "+side+" bound")
	}
	return nil, bad
}
