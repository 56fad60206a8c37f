// Package errors defines the error envelope shared by every layer of the SDK.
// Callers match on the Code (via errors.Is against the exported sentinels) or
// on the message prefix, which always carries the kind identifier.
package errors

import "fmt"

// ErrorCode identifies a failure kind.
type ErrorCode string

const (
	// HTTP kinds surfaced by the CLOB client.
	CodeBadRequest          ErrorCode = "BAD_REQUEST"
	CodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	CodeTooManyRequests     ErrorCode = "TOO_MANY_REQUESTS"
	CodeInternalServerError ErrorCode = "INTERNAL_SERVER_ERROR"

	// JSON-RPC kinds surfaced by the node transport.
	CodeRPCRequestFailed ErrorCode = "RPC_REQUEST_FAILED"
	CodeRPCResponseEmpty ErrorCode = "RPC_RESPONSE_EMPTY"
	CodeRPCError         ErrorCode = "RPC_ERROR"
	CodeRPCInvalidResult ErrorCode = "RPC_INVALID_RESULT"

	// On-chain approval flow.
	CodeApprovalFailed ErrorCode = "APPROVAL_FAILED"
)

// SDKError carries a failure kind alongside a human-readable message and an
// optional wrapped cause.
type SDKError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *SDKError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *SDKError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any SDKError with the same code, so sentinels work with errors.Is
// regardless of the formatted message.
func (e *SDKError) Is(target error) bool {
	t, ok := target.(*SDKError)
	return ok && t.Code == e.Code
}

// New builds an SDKError whose message is prefixed with the kind identifier.
func New(code ErrorCode, format string, args ...interface{}) *SDKError {
	return &SDKError{
		Code:    code,
		Message: fmt.Sprintf("%s: %s", code, fmt.Sprintf(format, args...)),
	}
}

// Wrap is New with a preserved cause for errors.Unwrap chains.
func Wrap(code ErrorCode, err error, format string, args ...interface{}) *SDKError {
	e := New(code, format, args...)
	e.Err = err
	return e
}

// NewJSONRPC formats a node-reported error as RPC_ERROR:<code> so callers can
// pattern-match on the prefix including the numeric JSON-RPC code.
func NewJSONRPC(rpcCode int, message string) *SDKError {
	return &SDKError{
		Code:    CodeRPCError,
		Message: fmt.Sprintf("%s:%d: %s", CodeRPCError, rpcCode, message),
	}
}

// NewApprovalFailed keeps the literal "Approval failed" prefix the approval
// flow is contracted to surface.
func NewApprovalFailed(format string, args ...interface{}) *SDKError {
	return &SDKError{
		Code:    CodeApprovalFailed,
		Message: "Approval failed: " + fmt.Sprintf(format, args...),
	}
}

var (
	ErrBadRequest          = &SDKError{Code: CodeBadRequest}
	ErrUnauthorized        = &SDKError{Code: CodeUnauthorized}
	ErrTooManyRequests     = &SDKError{Code: CodeTooManyRequests}
	ErrInternalServerError = &SDKError{Code: CodeInternalServerError}

	ErrRPCRequestFailed = &SDKError{Code: CodeRPCRequestFailed}
	ErrRPCResponseEmpty = &SDKError{Code: CodeRPCResponseEmpty}
	ErrRPCError         = &SDKError{Code: CodeRPCError}
	ErrRPCInvalidResult = &SDKError{Code: CodeRPCInvalidResult}

	ErrApprovalFailed = &SDKError{Code: CodeApprovalFailed, Message: "Approval failed"}
)
