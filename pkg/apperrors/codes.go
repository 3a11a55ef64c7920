package apperrors

// ErrorCode - машиночитаемый код ошибки, уходит клиенту в поле error.code
type ErrorCode string

// Системные
const (
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"
	CodeStorageError  ErrorCode = "STORAGE_ERROR"
)

// Общие ошибки бизнес-логики
const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeLimitExceeded    ErrorCode = "LIMIT_EXCEEDED"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	CodePostUnavailable  ErrorCode = "POST_UNAVAILABLE"
)

// Аутентификация и авторизация
const (
	CodeUnauthorized            ErrorCode = "UNAUTHORIZED"
	CodeInvalidCredentials      ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken            ErrorCode = "INVALID_TOKEN"
	CodeForbidden               ErrorCode = "FORBIDDEN"
	CodeAccountNotApproved      ErrorCode = "ACCOUNT_NOT_APPROVED"
	CodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"
	CodeCannotModifySelf        ErrorCode = "CANNOT_MODIFY_SELF"
	CodeEmailAlreadyExists      ErrorCode = "EMAIL_ALREADY_EXISTS"
)
