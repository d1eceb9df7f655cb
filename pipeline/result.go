package pipeline

// Outcome is the type-erased view of a Result as seen by interceptors and
// caches.
//
// Implementations are immutable and safe for unlimited concurrent reuse.
type Outcome interface {
	// IsSuccess reports whether the operation completed successfully.
	IsSuccess() bool

	// Errors returns the user-facing error messages of a failed outcome.
	Errors() []string

	// Diagnostic returns the internal diagnostic string, if any.
	Diagnostic() string
}

// Result is the immutable outcome of a handled request.
//
// A successful Result carries a value; a failed Result carries user-facing
// error messages and an optional internal diagnostic. Faults are not
// Results: they travel as ordinary Go errors alongside.
type Result[T any] struct {
	ok         bool
	value      T
	errs       []string
	diagnostic string
}

// Ok creates a successful Result carrying value.
func Ok[T any](value T) Result[T] {
	return Result[T]{ok: true, value: value}
}

// Fail creates a failed Result carrying user-facing messages.
func Fail[T any](messages ...string) Result[T] {
	r := Result[T]{}
	if len(messages) > 0 {
		r.errs = append([]string(nil), messages...)
	}
	return r
}

// WithDiagnostic returns a copy of the Result with the internal diagnostic
// set.
func (r Result[T]) WithDiagnostic(diagnostic string) Result[T] {
	r.diagnostic = diagnostic
	return r
}

// IsSuccess reports whether the operation completed successfully.
func (r Result[T]) IsSuccess() bool { return r.ok }

// Value returns the carried value; it is the zero value unless IsSuccess.
func (r Result[T]) Value() T { return r.value }

// Errors returns a copy of the user-facing error messages.
func (r Result[T]) Errors() []string {
	if len(r.errs) == 0 {
		return nil
	}
	return append([]string(nil), r.errs...)
}

// Diagnostic returns the internal diagnostic string, if any.
func (r Result[T]) Diagnostic() string { return r.diagnostic }

var _ Outcome = Result[struct{}]{}

// Failure creates a failed Outcome for interceptors that short-circuit
// without knowing the pipeline's value type. Dispatchers convert it into a
// typed failed Result before returning it to the caller.
func Failure(messages ...string) Outcome {
	return Fail[struct{}](messages...)
}

// FailureWithDiagnostic is Failure with the internal diagnostic set.
func FailureWithDiagnostic(diagnostic string, messages ...string) Outcome {
	return Fail[struct{}](messages...).WithDiagnostic(diagnostic)
}
