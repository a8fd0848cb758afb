package transaction

import "errors"

var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrEmptyID       = errors.New("transaction id is required")
)
