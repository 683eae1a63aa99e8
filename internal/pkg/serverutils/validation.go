package serverutils

import (
	"biz-assistant-be/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return apperror.Validation("invalid request: %s", err.Error())
	}
	return nil
}
