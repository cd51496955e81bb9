package model

import "errors"

var (
	// ErrInvalidParameter is returned for battery parameters outside their domain.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrMisalignedInput is returned when the series is not strictly hourly.
	ErrMisalignedInput = errors.New("misaligned input")
	// ErrInvalidInput is returned for non-finite PV or consumption values.
	ErrInvalidInput = errors.New("invalid input")
)
