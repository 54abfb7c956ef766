package storage

import (
	"fmt"
	"strings"
)

// NotFoundError reports an operation on a missing identifier.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ReferentialIntegrityError reports a write blocked by a cross-record rule,
// such as deleting a referenced exercise or activating a second mesocycle.
type ReferentialIntegrityError struct {
	Entity     string
	ID         string
	Reason     string
	References []string
}

func (e *ReferentialIntegrityError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Reason)
	if len(e.References) > 0 {
		msg += " (" + strings.Join(e.References, ", ") + ")"
	}
	return msg
}
