package services

import (
	"errors"
	"fmt"

	"agrimarket/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// cents accepts amounts with at most two decimal places.
	if err := v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		amount := decimal.NewFromFloat(fl.Field().Float())
		return amount.Equal(amount.Round(2))
	}); err != nil {
		panic(err)
	}
	return v
}

// validateStruct runs the validate tags of req and converts failures into a
// ValidationError carrying one message per field.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Validation("%v", err)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return apperrors.ValidationFields(fields)
}
