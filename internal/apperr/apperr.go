// Package apperr holds the error kinds the API reports to clients and the
// normalization of store, validation and binding failures into them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Kind string

const (
	KindValidation         Kind = "ValidationError"
	KindConflict           Kind = "Conflict"
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindRoleMismatch       Kind = "RoleMismatch"
	KindUnauthenticated    Kind = "Unauthenticated"
	KindInvalidToken       Kind = "InvalidToken"
	KindForbidden          Kind = "Forbidden"
	KindNotFound           Kind = "NotFound"
	KindUploadFailure      Kind = "UploadFailure"
	KindInternal           Kind = "Internal"
)

// Status is the HTTP status each kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict, KindInvalidCredentials, KindRoleMismatch:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Status() int { return e.Kind.Status() }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string) *Error      { return New(KindValidation, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }
func Forbidden(message string) *Error       { return New(KindForbidden, message) }
func NotFound(message string) *Error        { return New(KindNotFound, message) }

func InvalidToken(cause error) *Error {
	return Wrap(KindInvalidToken, "Invalid or expired token!", cause)
}

func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, "Invalid email or password!")
}

func RoleMismatch() *Error {
	return New(KindRoleMismatch, "User not found with this role!")
}

func UploadFailure(cause error) *Error {
	return Wrap(KindUploadFailure, "Failed to upload avatar", cause)
}

// Internal hides the cause from clients; it is only logged.
func Internal(cause error) *Error {
	return Wrap(KindInternal, "Internal Server Error", cause)
}

// IsKind reports whether err normalizes to kind.
func IsKind(err error, kind Kind) bool {
	e := From(err)
	return e != nil && e.Kind == kind
}

var dupKeyRe = regexp.MustCompile(`dup key: \{ ?"?(\w+)"?:`)

// From maps any error onto the client-facing taxonomy.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return Wrap(KindValidation, describe(verrs), err)
	}

	if mongo.IsDuplicateKeyError(err) {
		field := "value"
		if m := dupKeyRe.FindStringSubmatch(err.Error()); m != nil {
			field = m[1]
		}
		return Wrap(KindConflict, fmt.Sprintf("Duplicate %s entered", field), err)
	}

	if errors.Is(err, primitive.ErrInvalidHex) {
		return Wrap(KindValidation, "Invalid id", err)
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return Wrap(KindNotFound, "Resource not found", err)
	}

	return Internal(err)
}

// FromBinding normalizes a gin binding failure. Anything that is not a field
// validation error means the body could not be decoded.
func FromBinding(err error) *Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return Wrap(KindValidation, describe(verrs), err)
	}
	return Wrap(KindValidation, "Invalid request body", err)
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, " ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", field)
	case "email":
		return "Provide a valid email!"
	case "min":
		return fmt.Sprintf("%s must contain at least %s characters!", field, fe.Param())
	case "digits":
		return fmt.Sprintf("%s must contain exactly %s digits!", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "datetime", "date":
		return fmt.Sprintf("%s must be a valid date!", field)
	}
	return fmt.Sprintf("%s is invalid!", field)
}
