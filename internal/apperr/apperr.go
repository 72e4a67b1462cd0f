package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a business failure so the transport layer can map it to a
// status without inspecting messages.
type Code string

const (
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeNotFound         Code = "NOT_FOUND"
	CodeIneligibleItems  Code = "INELIGIBLE_ITEMS"
	CodeCapacityExceeded Code = "CAPACITY_EXCEEDED"
	CodeInvalidState     Code = "INVALID_STATE"
)

type Error struct {
	Code    Code
	Message string
	// ProductIDs carries the offending products for item-level rejections.
	ProductIDs []string
	// Field names the offending request field for validation failures.
	Field string
}

func (e *Error) Error() string {
	if len(e.ProductIDs) > 0 {
		return fmt.Sprintf("%s: %s [%s]", e.Code, e.Message, strings.Join(e.ProductIDs, ", "))
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func InvalidRequest(msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: msg}
}

func InvalidField(field, msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: msg, Field: field}
}

func NotFound(what string) *Error {
	return &Error{Code: CodeNotFound, Message: what + " not found"}
}

func IneligibleItems(msg string, productIDs []string) *Error {
	return &Error{Code: CodeIneligibleItems, Message: msg, ProductIDs: productIDs}
}

func CapacityExceeded(msg string) *Error {
	return &Error{Code: CodeCapacityExceeded, Message: msg}
}

func InvalidState(msg string) *Error {
	return &Error{Code: CodeInvalidState, Message: msg}
}

// CodeOf returns the taxonomy code of err, or "" when err is not an apperr.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
