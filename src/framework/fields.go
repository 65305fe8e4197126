package framework

import (
	"regexp"
	"time"
)

// FieldKind identifies one of the supported field kinds.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindPassword FieldKind = "password"
	FieldKindNumber   FieldKind = "number"
	FieldKindDate     FieldKind = "date"
	FieldKindCheckbox FieldKind = "checkbox"
	FieldKindSelect   FieldKind = "select"
	FieldKindRef      FieldKind = "ref"
)

// KnownFieldKinds lists every kind the field catalog supports.
var KnownFieldKinds = []FieldKind{
	FieldKindText,
	FieldKindPassword,
	FieldKindNumber,
	FieldKindDate,
	FieldKindCheckbox,
	FieldKindSelect,
	FieldKindRef,
}

// IsKnownFieldKind reports whether kind is part of the field catalog.
func IsKnownFieldKind(kind FieldKind) bool {
	for _, k := range KnownFieldKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// CompileValidator compiles the field's validator pattern. Fields without a
// validator compile to nil. A pattern that does not compile is reported at
// definition time, not at first use.
func (f *FieldDefinition) CompileValidator() (*regexp.Regexp, error) {
	if f.Validator == "" {
		return nil, nil
	}
	re, err := regexp.Compile(f.Validator)
	if err != nil {
		return nil, &ValidationError{FieldName: f.Name, Reason: err.Error()}
	}
	return re, nil
}

// ValidateValue checks a raw value against the field definition. A nil value
// is only rejected for required fields without a default.
func (f *FieldDefinition) ValidateValue(value interface{}) error {
	if value == nil {
		if f.Required && f.DefaultValue == nil {
			return &ValidationError{FieldName: f.Name, Reason: "required field has no value"}
		}
		return nil
	}

	switch f.Kind {
	case FieldKindText, FieldKindPassword, FieldKindSelect:
		s, ok := value.(string)
		if !ok {
			return &ValidationError{FieldName: f.Name, Reason: "value is not a string"}
		}
		if f.Required && s == "" {
			return &ValidationError{FieldName: f.Name, Reason: "required field is empty"}
		}
		re, err := f.CompileValidator()
		if err != nil {
			return err
		}
		if re != nil && !re.MatchString(s) {
			return &ValidationError{FieldName: f.Name, Reason: "value does not match validator pattern"}
		}
	case FieldKindNumber:
		switch value.(type) {
		case int, int32, int64, float64:
		default:
			return &ValidationError{FieldName: f.Name, Reason: "value is not numeric"}
		}
	case FieldKindDate:
		switch v := value.(type) {
		case time.Time:
		case string:
			if _, err := time.Parse(time.RFC3339, v); err != nil {
				return &ValidationError{FieldName: f.Name, Reason: "value is not an RFC3339 date"}
			}
		default:
			return &ValidationError{FieldName: f.Name, Reason: "value is not a date"}
		}
	case FieldKindCheckbox:
		if _, ok := value.(bool); !ok {
			return &ValidationError{FieldName: f.Name, Reason: "value is not a bool"}
		}
	case FieldKindRef:
		switch value.(type) {
		case int, int32, int64:
		default:
			return &ValidationError{FieldName: f.Name, Reason: "value is not a public id"}
		}
	default:
		return &ValidationError{FieldName: f.Name, Reason: "unknown field kind " + string(f.Kind)}
	}
	return nil
}
