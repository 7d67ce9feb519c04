package order

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrNotOrderOwner     = errors.New("you do not own this order")
	ErrInvalidTransition = errors.New("order is not in a state that allows this")
)
