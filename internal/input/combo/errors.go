package combo

import "errors"

// ErrInvalidRegistration is returned when a combo is registered without a
// callable callback. The registry is left unchanged.
var ErrInvalidRegistration = errors.New("invalid combo registration")
