// Package validation registers the custom binding tags used by request DTOs.
package validation

import (
	"fmt"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

// RegisterOn adds the phone and yearmonth tags to v. Numbers without a country
// code are parsed in defaultRegion (ISO 3166 alpha-2, e.g. "BD").
func RegisterOn(v *validator.Validate, defaultRegion string) error {
	if err := v.RegisterValidation("phone", phoneValidator(defaultRegion)); err != nil {
		return fmt.Errorf("register phone validator: %w", err)
	}
	if err := v.RegisterValidation("yearmonth", yearMonth); err != nil {
		return fmt.Errorf("register yearmonth validator: %w", err)
	}
	return nil
}

// RegisterCustomValidators installs the tags on gin's default validator engine.
func RegisterCustomValidators(defaultRegion string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v, defaultRegion)
}

// IsValidPhone reports whether number parses and is a valid number for its region.
func IsValidPhone(number, defaultRegion string) bool {
	parsed, err := libphonenumber.Parse(number, defaultRegion)
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(parsed)
}

func phoneValidator(defaultRegion string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String(), defaultRegion)
	}
}

func yearMonth(fl validator.FieldLevel) bool {
	return domain.IsSalaryMonth(fl.Field().String())
}
