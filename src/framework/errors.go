package framework

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned when a list fetch finished after a newer fetch
// for the same view was already issued. The stale result must be discarded.
var ErrSuperseded = errors.New("list request superseded by a newer request")

// SchemaError reports an invalid or inconsistent type schema, such as an
// orphan field reference or a rename of an immutable name.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: %s", e.Reason)
}

func NewSchemaError(format string, args ...interface{}) *SchemaError {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError reports a malformed field value or a field validator that
// does not compile.
type ValidationError struct {
	FieldName string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.FieldName == "" {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	return fmt.Sprintf("validation error on field %q: %s", e.FieldName, e.Reason)
}

// TypeMismatchError reports an object rendered against the wrong type.
type TypeMismatchError struct {
	ObjectID     int64
	ObjectTypeID int64
	TypeID       int64
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("object %d references type %d, not type %d",
		e.ObjectID, e.ObjectTypeID, e.TypeID)
}

// CycleError reports a parent cycle in the category graph.
type CycleError struct {
	CategoryID int64
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("category %d is part of a parent cycle", e.CategoryID)
}

// NotFoundError reports an id or name lookup miss.
type NotFoundError struct {
	Collection string
	PublicID   int64
	Name       string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("no record named %q in %s", e.Name, e.Collection)
	}
	return fmt.Sprintf("no record %d in %s", e.PublicID, e.Collection)
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
