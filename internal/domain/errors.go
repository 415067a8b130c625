// Package domain implements the event-sourced entity core: Journal,
// DocumentsBundle and Document, replayed from an ordered event history into
// an immutable manifest.
package domain

import "errors"

// Error kinds. Services translate some of these into no-ops (see
// VersionAlreadyExists) and propagate the rest unchanged to the HTTP layer,
// which maps them to status codes.
var (
	ErrNotFound             = errors.New("entity not found")
	ErrAlreadyExists        = errors.New("entity already exists")
	ErrAlreadyDeleted       = errors.New("entity already deleted")
	ErrVersionAlreadyExists = errors.New("version already exists")
	ErrAssetSlotUnknown     = errors.New("asset slot not declared in latest version")
	ErrDuplicateReference   = errors.New("duplicate reference")
	ErrUnknownReference     = errors.New("unknown reference")
	ErrValidation           = errors.New("validation error")
)
