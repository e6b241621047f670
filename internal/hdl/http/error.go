package http

import "errors"

var ErrNoDeviceInfo = errors.New("no device info")
