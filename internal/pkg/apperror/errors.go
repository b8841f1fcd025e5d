package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyDecided    ErrorCode = "ALREADY_DECIDED"
	ErrCodeInvalidToken      ErrorCode = "INVALID_TOKEN"
	ErrCodeIncompleteSession ErrorCode = "INCOMPLETE_SESSION"
	ErrCodeDeliveryFailure   ErrorCode = "DELIVERY_FAILURE"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду, чтобы errors.Is работал с обёрнутыми копиями.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyDecided:
		return http.StatusConflict
	case ErrCodeInvalidToken, ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeDeliveryFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или INTERNAL_ERROR для посторонних ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// StatusOf возвращает HTTP статус для ошибки.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsInvalidToken(err error) bool {
	return CodeOf(err) == ErrCodeInvalidToken
}

func IsIncompleteSession(err error) bool {
	return CodeOf(err) == ErrCodeIncompleteSession
}

func IsDeliveryFailure(err error) bool {
	return CodeOf(err) == ErrCodeDeliveryFailure
}

var (
	ErrReportNotFound     = New(ErrCodeNotFound, "заявление не найдено")
	ErrInvalidToken       = New(ErrCodeInvalidToken, "некорректное действие модератора")
	ErrIncompleteSession  = New(ErrCodeIncompleteSession, "заявка заполнена не полностью")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверные учетные данные")
)
