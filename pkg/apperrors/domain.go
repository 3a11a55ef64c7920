package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные переменные для ошибок домена.
Сервисы возвращают их как есть, хендлеры отдают через HandleError.
*/

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidStatus - неизвестное значение статуса (400)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// --- Auth ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrMissingToken = New(
	CodeUnauthorized,
	"auth",
	"Authorization token required",
	http.StatusUnauthorized,
)

// ErrAccountNotApproved - пароль верный, но учетная запись не в статусе APPROVED.
var ErrAccountNotApproved = New(
	CodeAccountNotApproved,
	"auth",
	"Account is not approved",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeInsufficientPermissions,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrCannotModifySelf = New(
	CodeCannotModifySelf,
	"users",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 6 characters required.",
	http.StatusBadRequest,
)

var ErrPasswordTooLong = New(
	CodeValidationFailed,
	"validation",
	"Password is too long. Maximum 72 bytes allowed.",
	http.StatusBadRequest,
)

var ErrEmailAlreadyExists = New(
	CodeEmailAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

// --- Users ---

var ErrUserNotFound = New(
	CodeNotFound,
	"users",
	"User not found",
	http.StatusNotFound,
)

var ErrEmptyUpdate = New(
	CodeValidationFailed,
	"users",
	"No fields to update",
	http.StatusBadRequest,
)

// --- Posts & Reviews ---

var ErrPostNotFound = New(
	CodeNotFound,
	"posts",
	"Post not found",
	http.StatusNotFound,
)

// ErrPostUnavailable - пост существует, но не опубликован или скрыт владельцем.
var ErrPostUnavailable = New(
	CodePostUnavailable,
	"posts",
	"Post is not available",
	http.StatusConflict,
)

var ErrCannotReviewOwnPost = New(
	CodeForbidden,
	"reviews",
	"You cannot review your own post",
	http.StatusForbidden,
)

// --- Catalog & Support ---

var ErrCategoryNotFound = New(
	CodeNotFound,
	"categories",
	"Category not found",
	http.StatusNotFound,
)

var ErrCategoryExists = New(
	CodeAlreadyExists,
	"categories",
	"Category already exists",
	http.StatusConflict,
)

var ErrTicketNotFound = New(
	CodeNotFound,
	"support",
	"Ticket not found",
	http.StatusNotFound,
)

// --- Uploads ---

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)
