package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries the HTTP status the handlers should answer with
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e Error) StatusCode() int {
	return e.Code
}

func (e Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// NewError builds a status-carrying error
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// StatusOf returns the status code carried by err, or 500
func StatusOf(err error) int {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Code
	}
	var uv Error
	if errors.As(err, &uv) {
		return uv.Code
	}
	return http.StatusInternalServerError
}

var ErrNotFound = &Error{Code: http.StatusNotFound, Message: "not found"}

var ErrInvalidParams = &Error{Code: http.StatusBadRequest, Message: "invalid parameters"}

var ErrPayloadTooLarge = &Error{Code: http.StatusRequestEntityTooLarge, Message: "payload too large"}
