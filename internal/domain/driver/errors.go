package driver

import "errors"

var (
	ErrDriverNotFound      = errors.New("driver not found")
	ErrVersionConflict     = errors.New("driver profile was modified concurrently")
	ErrInvalidProfileState = errors.New("invalid driver profile state")
)
