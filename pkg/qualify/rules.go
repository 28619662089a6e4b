package qualify

import (
	"fmt"
	"strings"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
)

// ValidateRule rejects malformed rule definitions at creation time so they
// never reach evaluation.
func ValidateRule(r *grooming.QualificationRule) error {
	switch r.Field {
	case grooming.FieldRevenue, grooming.FieldCompanySize, grooming.FieldIndustry,
		grooming.FieldBudget, grooming.FieldCompany:
	default:
		return fmt.Errorf("unknown rule field %q", r.Field)
	}

	switch r.Operator {
	case grooming.OpGreaterOrEqual, grooming.OpLessOrEqual:
		if !r.Field.Numeric() {
			return fmt.Errorf("operator %q requires a numeric field, got %q", r.Operator, r.Field)
		}
	case grooming.OpContains, grooming.OpNotContains:
		if r.Field.Numeric() {
			return fmt.Errorf("operator %q requires a text field, got %q", r.Operator, r.Field)
		}
	case grooming.OpEqual, grooming.OpNotEqual:
	default:
		return fmt.Errorf("unknown rule operator %q", r.Operator)
	}

	if strings.TrimSpace(r.Value) == "" {
		return fmt.Errorf("rule value cannot be empty")
	}
	if r.Field.Numeric() {
		if _, ok := grooming.ParseNumeric(r.Value); !ok {
			return fmt.Errorf("rule value %q is not numeric", r.Value)
		}
	}

	return nil
}

// evaluateRule applies one rule to a meeting. It never errors: a missing or
// unusable field value fails the rule with an explanation.
func evaluateRule(m *grooming.Meeting, r *grooming.QualificationRule) (bool, string) {
	raw := fieldValue(m, r.Field)
	if strings.TrimSpace(raw) == "" {
		return false, fmt.Sprintf("missing %s data", r.Field)
	}

	if r.Field.Numeric() {
		return evaluateNumeric(r, raw)
	}
	return evaluateText(r, raw)
}

func evaluateNumeric(r *grooming.QualificationRule, raw string) (bool, string) {
	actual, ok := grooming.ParseNumeric(raw)
	if !ok {
		return false, fmt.Sprintf("%s value %q is not numeric", r.Field, raw)
	}

	// Rule values are validated numeric at creation
	expected, ok := grooming.ParseNumeric(r.Value)
	if !ok {
		return false, fmt.Sprintf("rule value %q is not numeric", r.Value)
	}

	var pass bool
	switch r.Operator {
	case grooming.OpGreaterOrEqual:
		pass = actual >= expected
	case grooming.OpLessOrEqual:
		pass = actual <= expected
	case grooming.OpEqual:
		pass = actual == expected
	case grooming.OpNotEqual:
		pass = actual != expected
	}

	if pass {
		return true, ""
	}
	return false, fmt.Sprintf("%s %s does not satisfy %s %s", r.Field, raw, opLabel(r.Operator), r.Value)
}

func evaluateText(r *grooming.QualificationRule, raw string) (bool, string) {
	actual := strings.ToLower(strings.TrimSpace(raw))
	expected := strings.ToLower(strings.TrimSpace(r.Value))

	var pass bool
	switch r.Operator {
	case grooming.OpEqual:
		pass = actual == expected
	case grooming.OpNotEqual:
		pass = actual != expected
	case grooming.OpContains:
		pass = strings.Contains(actual, expected)
	case grooming.OpNotContains:
		pass = !strings.Contains(actual, expected)
	}

	if pass {
		return true, ""
	}
	return false, fmt.Sprintf("%s %q does not satisfy %s %q", r.Field, raw, opLabel(r.Operator), r.Value)
}

func fieldValue(m *grooming.Meeting, field grooming.RuleField) string {
	switch field {
	case grooming.FieldRevenue:
		return m.Revenue
	case grooming.FieldCompanySize:
		return m.CompanySize
	case grooming.FieldIndustry:
		return m.Industry
	case grooming.FieldBudget:
		return m.Budget
	case grooming.FieldCompany:
		return m.Company
	}
	return ""
}

func opLabel(op grooming.RuleOperator) string {
	switch op {
	case grooming.OpGreaterOrEqual:
		return ">="
	case grooming.OpLessOrEqual:
		return "<="
	case grooming.OpEqual:
		return "="
	case grooming.OpNotEqual:
		return "!="
	case grooming.OpContains:
		return "contains"
	case grooming.OpNotContains:
		return "not contains"
	}
	return string(op)
}
