package middleware

import "errors"

var ErrNoDeviceCookie = errors.New("device id cookie required")
var ErrTooManyRequests = errors.New("too many requests")
