package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error carrying a stable code, a user-facing message
// and, when it originated from the account service, the HTTP status observed.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not shown to the user)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

const (
	CodeSessionExpired   = "AUTH_001"
	CodeSignInRejected   = "AUTH_002"
	CodeNotSignedIn      = "AUTH_003"
	CodeRouteForbidden   = "AUTH_004"
	CodeRejected         = "REQ_001"
	CodeServiceFailure   = "SVC_001"
	CodeUnreachable      = "NET_001"
	CodeMalformed        = "RESP_001"
	CodeDiscarded        = "VIEW_001"
	CodeInternal         = "SYS_001"

	// Raised by the sandbox account service.
	CodeInvalidCredentials = "SBX_001"
	CodeInvalidToken       = "SBX_002"
	CodeAdminOnly          = "SBX_003"
	CodeInsufficientFunds  = "SBX_004"
	CodeUnknownAccount     = "SBX_005"
	CodeAccountExists      = "SBX_006"
	CodeRateLimited        = "SBX_007"
	defaultRejectMessage = "Request failed"
)

// ---- Authorization (AUTH) ----

// ErrSessionExpired is returned for every 401/403 from the account service.
func ErrSessionExpired(httpStatus int) *AppError {
	return New(CodeSessionExpired, "Your session has expired. Please log in again.", httpStatus)
}

// ErrSignInRejected carries the service's message verbatim when present.
func ErrSignInRejected(message string, httpStatus int) *AppError {
	if message == "" {
		message = "Login failed"
	}
	return New(CodeSignInRejected, message, httpStatus)
}

func ErrNotSignedIn() *AppError {
	return New(CodeNotSignedIn, "Not signed in", http.StatusUnauthorized)
}

func ErrRouteForbidden(route string) *AppError {
	return New(CodeRouteForbidden, fmt.Sprintf("%s requires administrator access", route), http.StatusForbidden)
}

// ---- Account service responses (REQ / SVC / RESP) ----

// ErrNoServiceMessage is wrapped by service errors whose body carried no message.
var ErrNoServiceMessage = errors.New("no message from service")

// ErrRejected surfaces a business-rule rejection (e.g. insufficient funds) verbatim.
func ErrRejected(message string, httpStatus int) *AppError {
	if message == "" {
		return Wrap(CodeRejected, fmt.Sprintf("%s with status %d", defaultRejectMessage, httpStatus), httpStatus, ErrNoServiceMessage)
	}
	return New(CodeRejected, message, httpStatus)
}

func ErrServiceFailure(message string, httpStatus int) *AppError {
	if message == "" {
		return Wrap(CodeServiceFailure, "Account service is unavailable", httpStatus, ErrNoServiceMessage)
	}
	return New(CodeServiceFailure, message, httpStatus)
}

// ErrMalformed marks a response that cannot be displayed at all.
func ErrMalformed(err error) *AppError {
	return Wrap(CodeMalformed, "Unexpected response from account service", 0, err)
}

// ---- Network (NET) ----

func ErrUnreachable(err error) *AppError {
	return Wrap(CodeUnreachable, "Something went wrong, account service is unreachable", 0, err)
}

// ---- View (VIEW) ----

// ErrDiscarded reports that a response arrived after its view was left.
func ErrDiscarded(view string) *AppError {
	return New(CodeDiscarded, fmt.Sprintf("response for %s discarded", view), 0)
}

// ---- System (SYS) ----

func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal error", 0, err)
}

// Validation returns a client-side input rejection.
func Validation(message string) *AppError {
	return New(CodeRejected, message, http.StatusBadRequest)
}

// ---- Sandbox service (SBX) ----

func ErrInvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAdminOnly() *AppError {
	return New(CodeAdminOnly, "Admin access required", http.StatusForbidden)
}

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient funds", http.StatusBadRequest)
}

func ErrUnknownAccount(id int64) *AppError {
	return New(CodeUnknownAccount, fmt.Sprintf("User %d not found", id), http.StatusNotFound)
}

func ErrAccountExists() *AppError {
	return New(CodeAccountExists, "Username or email already registered", http.StatusConflict)
}

func ErrRateLimited() *AppError {
	return New(CodeRateLimited, "Too many requests", http.StatusTooManyRequests)
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsUnauthorized(err error) bool { return CodeOf(err) == CodeSessionExpired }
func IsUnreachable(err error) bool  { return CodeOf(err) == CodeUnreachable }
func IsMalformed(err error) bool    { return CodeOf(err) == CodeMalformed }
func IsRejected(err error) bool     { return CodeOf(err) == CodeRejected }
func IsDiscarded(err error) bool    { return CodeOf(err) == CodeDiscarded }

// ServiceMessage returns the message the account service put in its error
// body, or "".
func ServiceMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) || errors.Is(appErr, ErrNoServiceMessage) {
		return ""
	}
	switch appErr.Code {
	case CodeRejected, CodeServiceFailure:
		return appErr.Message
	}
	return ""
}

// UserMessage returns the message to display for err.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong"
}
