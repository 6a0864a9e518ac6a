package common

import "errors"

var (
	ErrMalformedSpec = errors.New("malformed position")
	ErrIllegalMove   = errors.New("illegal move")
	ErrEngineBusy    = errors.New("search still run")
)
