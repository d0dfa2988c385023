package domain

import (
	"errors"
	"fmt"
	"strings"

	"client_registry/internal/model"
)

// Инфраструктурные ошибки хранилища. Сервис переводит их в *Error.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate value")
)

// UniqueViolationError - нарушение уникального индекса на уровне хранилища.
type UniqueViolationError struct {
	Field model.Field
	Err   error
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

func (e *UniqueViolationError) Unwrap() error { return e.Err }

func (e *UniqueViolationError) Is(target error) bool { return target == ErrDuplicate }

type Code string

const (
	CodeMissingArgument Code = "MISSING_ARGUMENTS"
	CodeNotFound        Code = "CLIENT_NOT_FOUND"
	CodeValidation      Code = "VALIDATION_FAILED"
	CodeConflict        Code = "ALREADY_REGISTERED"
)

// FieldError - ошибка одного поля. Несколько сообщений для поля склеиваются через ", ".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error - ошибка, которую сервис возвращает вызывающему коду.
type Error struct {
	Code    Code
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *Error) Unwrap() error { return e.Err }

// NewMissingArgument - обязательный аргумент не передан, обращения к хранилищу не было.
func NewMissingArgument(arg string) *Error {
	return &Error{
		Code:    CodeMissingArgument,
		Message: arg + " is required",
		Fields:  []FieldError{{Field: arg, Message: arg + " is required"}},
	}
}

// NewNotFound - клиент не найден среди не удалённых.
func NewNotFound(err error) *Error {
	return &Error{Code: CodeNotFound, Message: "Client not found", Err: err}
}

// NewValidation собирает ошибки полей. Если все они - конфликты уникальности,
// код ошибки CodeConflict.
func NewValidation(fields []FieldError, conflicts int) *Error {
	code := CodeValidation
	if conflicts > 0 && conflicts == len(fields) {
		code = CodeConflict
	}
	return &Error{Code: code, Message: "Validation failed", Fields: fields}
}

// NewConflict - значение поля уже занято другим клиентом.
func NewConflict(field model.Field, err error) *Error {
	return &Error{
		Code:    CodeConflict,
		Message: "Validation failed",
		Fields:  []FieldError{{Field: string(field), Message: ConflictMessage(field)}},
		Err:     err,
	}
}

// ConflictMessage - одно и то же сообщение для предварительной проверки и для ошибки БД.
func ConflictMessage(field model.Field) string {
	switch field {
	case model.FieldEmail:
		return "This email is already registered"
	case model.FieldPhone:
		return "This phone is already registered"
	case model.FieldCnpj:
		return "CNPJ is already registered"
	}
	return string(field) + " is already registered"
}

// HasCode проверяет код ошибки по всей цепочке.
func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsValidation - true и для обычной ошибки валидации, и для конфликта уникальности.
func IsValidation(err error) bool {
	return HasCode(err, CodeValidation) || HasCode(err, CodeConflict)
}
