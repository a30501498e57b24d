package customvalidator

import (
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations registers the dashboard-specific rules in
// the passed validator instance.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("direction", isLoadDirection); err != nil {
		return err
	}
	if err := v.RegisterValidation("local_date", isLocalDate); err != nil {
		return err
	}
	return nil
}

func isLoadDirection(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "Uploading" || s == "Unloading"
}

func isLocalDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != len("2006-01-02") {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			if r != '-' {
				return false
			}
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
