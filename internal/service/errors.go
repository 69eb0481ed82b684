package service

import "errors"

var (
	ErrNotFound           = errors.New("error not found")
	ErrPricingUnavailable = errors.New("error pricing unavailable")
	ErrInvalidQuantity    = errors.New("error invalid quantity")
	ErrCardAlreadyUsed    = errors.New("error discount card already used")
)
