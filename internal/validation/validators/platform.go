package validators

import (
	"github.com/go-playground/validator/v10"

	"github.com/sergeii/decfix/pkg/dec/platform"
)

func ValidatePlatform(fl validator.FieldLevel) bool {
	_, err := platform.Parse(fl.Field().String())
	return err == nil
}
