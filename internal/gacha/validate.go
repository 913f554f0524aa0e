package gacha

import "errors"

var ErrInvalidCount = errors.New("invalid draw count; must be >= 0")

// MaxDrawCount bounds a single request.
const MaxDrawCount = 1000

func validateCount(n int) error {
	if n < 0 || n > MaxDrawCount {
		return ErrInvalidCount
	}
	return nil
}
