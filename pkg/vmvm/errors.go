package vmvm

import "fmt"

// ErrorCode classifies a VMError into a broad, stable category, the
// way a caller doing errors.As/Is discrimination would want to branch
// without inspecting Go's concrete underlying type.
type ErrorCode int

const (
	// ErrUnknown covers anything not classified below.
	ErrUnknown ErrorCode = iota
	// ErrAssembly covers module-graph and compiler failures: unresolved
	// names, call cycles, rejected syscalls, and the like.
	ErrAssembly
	// ErrExecution covers runtime failures raised while running a
	// compiled program.
	ErrExecution
	// ErrInvalidInput covers malformed caller input, e.g. an unknown
	// entrypoint path passed to Assemble.
	ErrInvalidInput
)

// VMError is the public error wrapper every failure from this package
// is returned as, carrying a stable Code plus the concrete underlying
// cause.
type VMError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *VMError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vmvm error [%d]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vmvm error [%d]: %s", e.Code, e.Message)
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *VMError) Unwrap() error { return e.Cause }

// Is reports whether target is a *VMError with the same Code, so
// callers can do errors.Is(err, &VMError{Code: ErrExecution}).
func (e *VMError) Is(target error) bool {
	t, ok := target.(*VMError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func wrapAssembly(err error) error {
	if err == nil {
		return nil
	}
	return &VMError{Code: ErrAssembly, Message: "assembly failed", Cause: err}
}

func wrapExecution(err error) error {
	if err == nil {
		return nil
	}
	return &VMError{Code: ErrExecution, Message: "execution failed", Cause: err}
}
