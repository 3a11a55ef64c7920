package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// MaxPasswordBytes - предел bcrypt, считается в байтах
	MaxPasswordBytes = 72
)

var (
	ErrWeakPassword    = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes long")
)

// dummyHash сравнивается с паролем, когда email не найден,
// чтобы время ответа не выдавало существование аккаунта.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("marketvue-dummy-password"), bcrypt.DefaultCost)

// HashPassword создает bcrypt хеш пароля
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash проверяет пароль против хеша
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckDummy тратит столько же времени, сколько CheckPasswordHash, и всегда возвращает false.
func CheckDummy(password string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return false
}

// ValidatePassword проверяет сложность пароля
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
