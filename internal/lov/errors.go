package lov

import "errors"

var (
	// ErrLastRow rejects removing the only remaining value row.
	ErrLastRow = errors.New("at least one value required")
	// ErrRowNotFound indicates an unknown row identifier.
	ErrRowNotFound = errors.New("value row not found")
	// ErrUnknownField indicates a field name the form does not carry.
	ErrUnknownField = errors.New("unknown form field")
	// ErrValidation indicates the form failed client-side validation.
	ErrValidation = errors.New("validation failed")
	// ErrSaveRejected indicates the API answered without a success status.
	ErrSaveRejected = errors.New("save rejected")
	// ErrSaveFailed indicates a transport or server failure during save.
	ErrSaveFailed = errors.New("save failed")
	// ErrSaveInFlight indicates the same form is already being saved.
	ErrSaveInFlight = errors.New("save already in progress")
	// ErrFetchFailed indicates the lists could not be loaded.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrNoRecord indicates the API returned no record for an id.
	ErrNoRecord = errors.New("list not found")
)
