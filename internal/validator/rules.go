package validator

import (
	"fmt"
	"math"
	"strings"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// MaxPrice - верхняя граница цены объявления.
const MaxPrice = 1e12

// registerCustomRules регистрирует кастомные функции валидации.
func registerCustomRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"is-user-status": validateUserStatus,
		"is-post-status": validatePostStatus,
		"is-user-role":   validateUserRole,
		"is-currency":    validateCurrency,
		"is-price":       validatePrice,
		"is-password":    validatePassword,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("tag '%s': %w", tag, err)
		}
	}
	return nil
}

// Пустые значения не проверяем, для этого есть 'required'.

func validateUserStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := models.ParseUserStatus(value)
	return ok
}

func validatePostStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := models.ParsePostStatus(value)
	return ok
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := models.ParseUserRole(value)
	return ok
}

func validateCurrency(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if len(value) != 3 {
		return false
	}
	return strings.ToUpper(value) == value && strings.IndexFunc(value, func(r rune) bool {
		return r < 'A' || r > 'Z'
	}) == -1
}

// validatePrice - конечное неотрицательное число (Inf и NaN не кодируются в JSON).
func validatePrice(fl validator.FieldLevel) bool {
	return ValidPrice(fl.Field().Float())
}

// ValidPrice - конечное число от 0 до MaxPrice.
func ValidPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= MaxPrice
}

// validatePassword считает байты, а не символы: bcrypt принимает не больше 72 байт.
func validatePassword(fl validator.FieldLevel) bool {
	n := len(fl.Field().String())
	return n >= auth.MinPasswordLength && n <= auth.MaxPasswordBytes
}
