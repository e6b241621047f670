package hdl

import "errors"

var ErrInternal = errors.New("internal error")
var ErrDecodeRequest = errors.New("decode request")
var ErrUnauthorized = errors.New("unauthorized")

var ErrFailedToGetUUID = errors.New("failed to get uid from context")
