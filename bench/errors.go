package bench

import "errors"

var (
	ErrInvalidConfig  = errors.New("invalid benchmark configuration")
	ErrLostValue      = errors.New("value was lost")
	ErrDuplicateValue = errors.New("value was received twice")
	ErrOutOfOrder     = errors.New("value arrived out of order")
	ErrSizeMismatch   = errors.New("queue size does not match its contents")
)
