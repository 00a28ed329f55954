// Package forms evaluates declarative per-field validation rules against
// submitted form values, producing field-level error messages.
package forms

import (
	"strconv"
	"strings"
)

// Error is a single field validation failure.
type Error struct {
	Field   string
	Message string
}

// Errors collects field failures in rule order.
type Errors []Error

// Has reports whether any field failed.
func (e Errors) Has() bool { return len(e) > 0 }

// For returns the message for a field, or "".
func (e Errors) For(field string) string {
	for _, err := range e {
		if err.Field == field {
			return err.Message
		}
	}
	return ""
}

// Check validates one already-trimmed value, returning a message on failure.
type Check func(value string) string

// Rule describes the checks applied to one form field. Checks run in order;
// the first failure wins for that field.
type Rule struct {
	Field  string
	Trim   bool
	Checks []Check
}

// Validate runs the rules against the form values. It returns the values as
// seen by the checks (trimmed where the rule says so) keyed by field name,
// plus any failures.
func Validate(get func(field string) string, rules []Rule) (map[string]string, Errors) {
	values := make(map[string]string, len(rules))
	var errs Errors
	for _, rule := range rules {
		v := get(rule.Field)
		if rule.Trim {
			v = strings.TrimSpace(v)
		}
		values[rule.Field] = v
		for _, check := range rule.Checks {
			if msg := check(v); msg != "" {
				errs = append(errs, Error{Field: rule.Field, Message: msg})
				break
			}
		}
	}
	return values, errs
}

// Required fails on the empty string.
func Required(msg string) Check {
	return func(v string) string {
		if v == "" {
			return msg
		}
		return ""
	}
}

// MinLen fails on values shorter than n. Empty values pass; pair with
// Required when the field is mandatory.
func MinLen(n int, msg string) Check {
	return func(v string) string {
		if v != "" && len(v) < n {
			return msg
		}
		return ""
	}
}

// IntMin fails unless the value parses as an integer >= min.
func IntMin(min int, msg string) Check {
	return func(v string) string {
		n, err := strconv.Atoi(v)
		if err != nil || n < min {
			return msg
		}
		return ""
	}
}

// FloatRange fails unless the value parses as a float in [min, max].
func FloatRange(min, max float64, msg string) Check {
	return func(v string) string {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < min || f > max {
			return msg
		}
		return ""
	}
}

// Equals fails unless the value exactly matches other.
func Equals(other string, msg string) Check {
	return func(v string) string {
		if v != other {
			return msg
		}
		return ""
	}
}
