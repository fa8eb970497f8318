package calendar

import "errors"

var (
	ErrMalformedStateCode = errors.New("malformed calendar state code")
	ErrKeyOutsideGrid     = errors.New("calendar record outside grid domain")
)
