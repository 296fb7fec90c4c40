package service

import (
	"errors"
	"net/http"
)

// Kind classifies a service error for the request boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindAuthorization
	KindNotFound
)

// HTTPStatus maps k to the status code the web layer answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified, user-presentable failure. Code doubles as the
// translation key suffix ("errors.<code>"); Msg is the English fallback.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any Error with the same code, so wrapped copies still compare
// equal to the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// wrap returns a copy of sentinel carrying cause.
func wrap(sentinel *Error, cause error) *Error {
	e := *sentinel
	e.Err = cause
	return &e
}

var (
	ErrMissingField        = &Error{Kind: KindValidation, Code: "missingField", Msg: "All fields are required"}
	ErrInvalidEmployeeID   = &Error{Kind: KindValidation, Code: "invalidEmployeeId", Msg: "Employee ID must be EMP followed by 4 digits"}
	ErrDuplicateEmployeeID = &Error{Kind: KindConflict, Code: "duplicateEmployeeId", Msg: "Employee ID already exists"}
	ErrWeakPassword        = &Error{Kind: KindValidation, Code: "weakPassword", Msg: "Password must be at least 8 characters and contain an uppercase letter, a lowercase letter, a digit and one of @$!%*?&"}
	ErrPasswordMismatch    = &Error{Kind: KindValidation, Code: "passwordMismatch", Msg: "Passwords do not match"}
	ErrInvalidRole         = &Error{Kind: KindValidation, Code: "invalidRole", Msg: "Role must be employee or admin"}
	ErrDuplicateEmail      = &Error{Kind: KindConflict, Code: "duplicateEmail", Msg: "Email already exists"}

	ErrInvalidCredentials = &Error{Kind: KindAuth, Code: "invalidCredentials", Msg: "Invalid email or password"}
	ErrUnauthenticated    = &Error{Kind: KindAuth, Code: "unauthenticated", Msg: "Please log in to continue"}
	ErrUnauthorized       = &Error{Kind: KindAuthorization, Code: "unauthorized", Msg: "You are not authorised to perform this action"}

	ErrTicketFieldsRequired = &Error{Kind: KindValidation, Code: "ticketFieldsRequired", Msg: "All fields are required!"}
	ErrTitleTooLong         = &Error{Kind: KindValidation, Code: "titleTooLong", Msg: "Title is too long"}
	ErrDescriptionTooLong   = &Error{Kind: KindValidation, Code: "descriptionTooLong", Msg: "Description is too long"}
	ErrInvalidStatus        = &Error{Kind: KindValidation, Code: "invalidStatus", Msg: "Unknown ticket status"}
	ErrEmptyComment         = &Error{Kind: KindValidation, Code: "emptyComment", Msg: "Comment cannot be empty"}
	ErrCommentTooLong       = &Error{Kind: KindValidation, Code: "commentTooLong", Msg: "Comment is too long"}

	ErrTicketNotFound = &Error{Kind: KindNotFound, Code: "ticketNotFound", Msg: "Ticket not found"}
	ErrUserNotFound   = &Error{Kind: KindNotFound, Code: "userNotFound", Msg: "User not found"}
)

// KindOf returns the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
