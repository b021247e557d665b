package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"portal_backend/internal/models"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", oneOf(models.UserRoles))
	mustRegister("is-job-status", oneOf(models.JobStatuses))
	mustRegister("is-employment-type", oneOf(models.EmploymentTypes))
	mustRegister("is-field-type", oneOf(models.FieldTypes))
	mustRegister("is-transaction-type", oneOf(models.TransactionTypes))
	mustRegister("is-hewan-type", oneOf(models.HewanTypes))
	mustRegister("is-hewan-status", oneOf(models.HewanStatuses))
	mustRegister("phone", validatePhone)
}

// oneOf builds a rule accepting any of allowed. Empty values pass; 'required' covers them.
func oneOf[T ~string](allowed []T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		for _, a := range allowed {
			if string(a) == value {
				return true
			}
		}
		return false
	}
}

func validatePhone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return IsPhone(value)
}
