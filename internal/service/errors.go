package service

import "errors"

var (
	ErrNotFound            = errors.New("error not found")
	ErrInvalidInput        = errors.New("error invalid input")
	ErrSellExceedsHoldings = errors.New("error sell quantity exceeds held shares")
	ErrNotCompleted        = errors.New("error portfolio is not completed")
)
