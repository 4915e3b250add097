package lease

import "errors"

var (
	ErrAgreementNotFound = errors.New("lease agreement not found")
	ErrVersionConflict   = errors.New("lease agreement was modified concurrently")
	ErrInvalidStatus     = errors.New("invalid lease agreement status")
)
