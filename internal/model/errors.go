package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage error")
)

// ReferenceError blocks deletion of an action that other actions' conditions
// still reference, either as previousActionId or as the embedded then-action.
type ReferenceError struct {
	ActionID     string
	ReferencedBy []string // ids of the actions holding the referencing conditions
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("action %s is referenced by conditions on [%s]",
		e.ActionID, strings.Join(e.ReferencedBy, ", "))
}

func (e *ReferenceError) Unwrap() error { return ErrConflict }
