package cron

import (
	"strconv"
	"strings"
)

// fieldSpec describes where a field sits in the expression and which
// values it accepts.
type fieldSpec struct {
	name   string
	min    int
	max    int
	adjust bool // store value-1, used for 1-based months
}

var fieldSpecs = [5]fieldSpec{
	{name: "minute", min: 0, max: 59},
	{name: "hour", min: 0, max: 23},
	{name: "day-of-month", min: 1, max: 31},
	{name: "month", min: 1, max: 12, adjust: true},
	{name: "day-of-week", min: 0, max: 6},
}

// Parse parses a five-field cron expression. Fields are separated by any
// run of whitespace. The returned error is a *ParseError describing the
// first offending field.
//
// No validation crosses field boundaries: "0 0 31 2 *" parses, and Next
// reports it as unsatisfiable.
func Parse(expression string) (Schedule, error) {
	tokens := strings.Fields(expression)
	if len(tokens) != len(fieldSpecs) {
		return Schedule{}, &ParseError{Kind: WrongArity, Expression: expression}
	}

	var fields [5]Field
	for i, spec := range fieldSpecs {
		field, err := parseField(spec, tokens[i], expression)
		if err != nil {
			return Schedule{}, err
		}
		fields[i] = field
	}

	return Schedule{
		expression: expression,
		minute:     fields[0],
		hour:       fields[1],
		day:        fields[2],
		month:      fields[3],
		dayOfWeek:  fields[4],
	}, nil
}

// parseField turns one whitespace-delimited token into a Field. The token
// is either * or a comma separated list of integers; empty list entries
// are rejected.
func parseField(spec fieldSpec, token, expression string) (Field, error) {
	if token == "*" {
		return Any(), nil
	}

	var field Field
	for _, segment := range strings.Split(token, ",") {
		value, err := strconv.Atoi(segment)
		if err != nil {
			return Field{}, &ParseError{
				Kind:       MalformedField,
				Expression: expression,
				Field:      spec.name,
				Token:      segment,
			}
		}
		if value < spec.min || value > spec.max {
			return Field{}, &ParseError{
				Kind:       OutOfRange,
				Expression: expression,
				Field:      spec.name,
				Token:      segment,
				Min:        spec.min,
				Max:        spec.max,
			}
		}
		if spec.adjust {
			value--
		}
		field.values.set(value)
	}
	return field, nil
}
