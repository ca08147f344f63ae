package services

import (
	"errors"
	"fmt"

	"fiber-mes/models"
)

var (
	// ErrInvalidInput covers malformed or out-of-range input rejected before
	// any side effect.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means a referenced formulation, batch, material or worker
	// does not resolve.
	ErrNotFound = errors.New("record not found")

	// ErrVersionNotLocked rejects production from a draft formulation version.
	ErrVersionNotLocked = errors.New("formulation version is not locked")

	// ErrConcurrentModification signals a lost optimistic-lock race on a
	// batch status update.
	ErrConcurrentModification = errors.New("batch was modified concurrently")

	// ErrDuplicateBatchCode is returned by stores when the generated batch
	// code collides; the service regenerates and retries.
	ErrDuplicateBatchCode = errors.New("batch code already exists")
)

// InsufficientMaterialsError carries the shortage list so the operator can
// see exactly what is missing.
type InsufficientMaterialsError struct {
	Shortages []Shortage
}

func (e *InsufficientMaterialsError) Error() string {
	return fmt.Sprintf("insufficient materials for %d requirement(s)", len(e.Shortages))
}

// InvalidTransitionError rejects a status edge not present in the batch
// transition table.
type InvalidTransitionError struct {
	From models.BatchStatus
	To   models.BatchStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal batch status transition %s -> %s", e.From, e.To)
}
