package load

import "errors"

var (
	ErrLoadNotFound = errors.New("load not found")
	ErrLoadNotOpen  = errors.New("load is not open for matching")
)
