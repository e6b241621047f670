package csrf

import "errors"

var (
	ErrGenerationFailed = errors.New("csrf token generation failed")
	ErrValidationFailed = errors.New("csrf validation failed")
)
