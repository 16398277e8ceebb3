package propagator

import "errors"

var (
	// ErrBinCount indicates a grid list whose size does not match the bin
	// counts the propagator was created for.
	ErrBinCount = errors.New("propagator: list size does not match configured bin count")
	// ErrBinRange indicates grid values outside their physical domain.
	ErrBinRange = errors.New("propagator: grid value out of range")
	// ErrNotConfigured indicates a calculation attempted before all required
	// setup calls completed.
	ErrNotConfigured = errors.New("propagator: incomplete configuration")
	// ErrOrder indicates setup calls invoked in an unsupported order.
	ErrOrder = errors.New("propagator: setup calls out of order")
	// ErrHeightBins indicates an invalid production-height histogram
	// configuration.
	ErrHeightBins = errors.New("propagator: invalid production height binning")
)
