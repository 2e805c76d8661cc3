package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fleet-service/internal/model"
)

var ErrNotFound = errors.New("not found")

// ValidationError reports a single field value that violates its
// constraint. Nothing was mutated; the caller can retry with a corrected
// value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// BusinessRuleError reports a transition or assignment that would violate
// a cross-entity invariant. Nothing was mutated.
type BusinessRuleError struct {
	Reason string
}

func (e *BusinessRuleError) Error() string {
	return e.Reason
}

// PersistenceError wraps a storage failure. By the time it surfaces the
// enclosing transaction has rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func validationErr(fe *model.FieldError) error {
	return &ValidationError{Field: fe.Field, Reason: fe.Reason}
}

func ruleErr(format string, args ...any) error {
	return &BusinessRuleError{Reason: fmt.Sprintf(format, args...)}
}

// storeErr translates a persistence-boundary failure: missing rows become
// ErrNotFound, everything else a PersistenceError.
func storeErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return &PersistenceError{Op: op, Err: err}
}
