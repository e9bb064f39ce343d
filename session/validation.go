package session

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const deviceIDTag = "deviceid"

// deviceIDPattern accepts six colon-separated two-digit hex groups, in either case.
var deviceIDPattern = regexp.MustCompile(`^[0-9A-Fa-f]{2}(:[0-9A-Fa-f]{2}){5}$`)

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation(deviceIDTag, func(fl validator.FieldLevel) bool {
		return deviceIDPattern.MatchString(fl.Field().String())
	})
	return v
}

var defaultValidator = newValidator()

// ValidateDeviceID reports ErrInvalidIdentifierFormat unless id is six colon-separated hex octets.
func ValidateDeviceID(id string) error {
	if !deviceIDPattern.MatchString(id) {
		return newError(OpLogin, ErrInvalidIdentifierFormat, "device id "+strconv.Quote(id))
	}
	return nil
}

// prepareLogin validates req and returns the copy that reaches the Authenticator.
func prepareLogin(v *validator.Validate, req LoginRequest) (LoginRequest, error) {
	if err := v.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return req, newError(OpLogin, ErrInvalidIdentifierFormat, "device id "+strconv.Quote(req.DeviceID))
		}
		return req, err
	}
	req.DeviceID = strings.ToUpper(req.DeviceID)
	return req, nil
}
