// Package results defines the two-variant outcome type used by every
// persistence and service operation in place of raised errors. Callers
// check Ok before touching Data; failures always carry both a human
// message and a machine-readable code.
package results

// Machine-readable failure codes.
const (
	CodeInvalidUID      = "INVALID_UID"
	CodeInvalidUser     = "INVALID_USER"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeQuotaExceeded   = "QUOTA_EXCEEDED"
	CodeReadError       = "READ_ERROR"
	CodeSaveError       = "SAVE_ERROR"
	CodeUpdateError     = "UPDATE_ERROR"
	CodeDeleteError     = "DELETE_ERROR"
	CodeExistsError     = "EXISTS_ERROR"
	CodeUnknownError    = "UNKNOWN_ERROR"
)

// Result holds either a success payload or a failure message plus code.
type Result[T any] struct {
	Ok    bool   `json:"ok"`
	Data  T      `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// Success wraps a payload in a successful result.
func Success[T any](data T) Result[T] {
	return Result[T]{Ok: true, Data: data}
}

// Failure builds a failed result. An empty code defaults to UNKNOWN_ERROR.
func Failure[T any](message, code string) Result[T] {
	if code == "" {
		code = CodeUnknownError
	}
	return Result[T]{Ok: false, Error: message, Code: code}
}

// Propagate carries a failure into a result of another payload type,
// preserving message and code. Only the target type needs naming; the
// source is inferred. Calling it on a successful result is a programming
// error and yields an UNKNOWN_ERROR failure.
func Propagate[U, T any](from Result[T]) Result[U] {
	if from.Ok {
		return Failure[U]("cannot propagate a successful result", "")
	}
	return Failure[U](from.Error, from.Code)
}
