package kronik

import "errors"

var (
	// ErrInvalidInput means scan or detection data is structurally impossible
	ErrInvalidInput = errors.New("kronik: invalid input")
	// ErrInvalidConfig means a parameter is outside its valid range
	ErrInvalidConfig = errors.New("kronik: invalid configuration")
	// ErrIndexOutOfRange means a feature index past the end of the list was used
	ErrIndexOutOfRange = errors.New("kronik: index out of range")
	// ErrTooFewPoints means there are not enough data points for a statistic
	ErrTooFewPoints = errors.New("kronik: too few data points")
)
