// Package algo has the numeric building blocks of flowcast: the lag-window
// transform, the ordered train/test split, error metrics and the regressors
// fitted at every walk-forward step.
package algo

import "errors"

// Sentinel errors returned by the algo package.
var (
	ErrInvalidWindow    = errors.New("window sizes must be at least 1")
	ErrInvalidRatio     = errors.New("split ratio must lie strictly between 0 and 1")
	ErrEmptyTrainingSet = errors.New("cannot fit on zero rows")
	ErrLengthMismatch   = errors.New("length mismatch")
	ErrFeatureMismatch  = errors.New("feature count mismatch")
	ErrUnknownParam     = errors.New("unknown parameter")
	ErrInvalidParam     = errors.New("invalid parameter value")
	ErrUnknownModel     = errors.New("unknown model kind")
)
