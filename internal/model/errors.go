package model

import "errors"

var (
	// ErrIllegalTransition is returned when a status move is not in the lifecycle graph.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrNotPermitted is returned when the actor may not perform a legal move.
	ErrNotPermitted = errors.New("actor not permitted to perform transition")
	// ErrInvalidPortfolio wraps item validation failures.
	ErrInvalidPortfolio = errors.New("invalid portfolio")
)
