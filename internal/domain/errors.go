package domain

import "fmt"

// Sentinel errors for the failure taxonomy. Executors wrap these with
// fmt.Errorf("%w: detail", ...) so callers can classify with errors.Is
// while keeping a human-readable message.
var (
	ErrTimeout           = fmt.Errorf("request timed out")
	ErrConnection        = fmt.Errorf("connection failed")
	ErrHTTPStatus        = fmt.Errorf("HTTP error")
	ErrInvalidResponse   = fmt.Errorf("invalid response")
	ErrMissingDependency = fmt.Errorf("browser engine unavailable")
	ErrInvalidInput      = fmt.Errorf("invalid input")
)

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
