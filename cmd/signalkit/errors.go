package main

import "errors"

var (
	// ErrDeliveryMismatch reports a stress run whose delivered count differs
	// from emitters × emits × slots.
	ErrDeliveryMismatch = errors.New("delivered count does not match expected")
	// ErrInvalidFormat reports an unknown report format.
	ErrInvalidFormat = errors.New("invalid report format")
)
