package e

import (
	"fmt"
	"strings"
)

var (
	// Классы ошибок предметной области
	ErrValidation         = fmt.Errorf("validation failed")
	ErrNotFound           = fmt.Errorf("not found")
	ErrInsufficientStock  = fmt.Errorf("insufficient stock")
	ErrConflict           = fmt.Errorf("conflict")
	ErrUnauthorized       = fmt.Errorf("unauthorized")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// 500
	ErrInternalServerError = fmt.Errorf("Internal Server Error!")

	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// FieldError описывает ошибку одного поля запроса.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError агрегирует ошибки полей и относится к одному классу ошибок (Kind).
type ValidationError struct {
	Kind   error
	Fields []FieldError
}

// NewValidationError создаёт ошибку валидации класса ErrValidation.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Kind: ErrValidation, Fields: fields}
}

// NewFieldError создаёт ошибку одного поля с произвольным классом.
// Используется для NotFound / InsufficientStock, которые тоже надо отдать клиенту с item_name.
func NewFieldError(kind error, field, message string) *ValidationError {
	return &ValidationError{Kind: kind, Fields: []FieldError{{Field: field, Message: message}}}
}

func (v *ValidationError) Error() string {
	msgs := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}

	return fmt.Sprintf("%v: %s", v.Kind, strings.Join(msgs, "; "))
}

func (v *ValidationError) Unwrap() error {
	return v.Kind
}
