package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/ndavydov/auth-sessions/internal/config"
	"github.com/ndavydov/auth-sessions/internal/dto"
	"github.com/ndavydov/auth-sessions/internal/hdl"
)

var validate = validator.New()

type Response struct {
	Data any `json:"data"`
}

type ErrorsResponse struct {
	Errors []string `json:"errors"`
}

func SuccessResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(
		&Response{
			Data: data,
		},
	)
}

func StatusResponse(w http.ResponseWriter, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
}

func ErrResponse(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(
		&ErrorsResponse{
			Errors: []string{err.Error()},
		},
	)
}

// ParseAndValidate decodes the request body into dst and runs validator
// tags. On failure it writes the 400 itself and returns false.
func ParseAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		ErrResponse(w, http.StatusBadRequest, hdl.ErrDecodeRequest)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		msgs := make([]string, 0, 1)
		if ok := errors.As(err, &verrs); ok {
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s rule", e.Field(), e.Tag()))
			}
		} else {
			msgs = append(msgs, err.Error())
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(&ErrorsResponse{Errors: msgs})
		return false
	}

	return true
}

// ParseDeviceByRequest pulls the device info placed by the Device middleware.
func ParseDeviceByRequest(ctx context.Context) (dto.DeviceRequest, bool) {
	d, ok := ctx.Value(config.DeviceKey).(dto.DeviceRequest)
	return d, ok
}
