package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// 呼び出し側が errors.Is で判定するための分類。
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrEmptyCart         = errors.New("empty cart")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInternal          = errors.New("internal failure")
)

type HTTPError struct {
	Status  int
	Message string
	Kind    error
	Cause   error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
		Kind:    kindForStatus(status),
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrInvalidInput
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrInternal
	}
}

func errUnauthorized() error {
	return NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

func errInvalid(message string) error {
	return NewHTTPError(http.StatusBadRequest, message)
}

func errNotFound(message string) error {
	return NewHTTPError(http.StatusNotFound, message)
}

func errForbidden(message string) error {
	return NewHTTPError(http.StatusForbidden, message)
}

func errEmptyCart() error {
	return &HTTPError{Status: http.StatusBadRequest, Message: "Your cart is empty", Kind: ErrEmptyCart}
}

// 在庫不足。メッセージに商品名を入れる
func errInsufficientStock(productName string) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: "Insufficient stock for " + productName,
		Kind:    ErrInsufficientStock,
	}
}

// DBなど想定外の失敗。原因はCauseに残してログ用に使う
func errDB(cause error) error {
	return &HTTPError{Status: http.StatusInternalServerError, Message: "db error", Kind: ErrInternal, Cause: cause}
}
