package runtime

import "errors"

// Evaluation failures. Every runtime error wraps exactly one of these so
// hosts can tell them apart with errors.Is.
var (
	ErrUnboundName   = errors.New("unbound name")
	ErrDuplicateName = errors.New("duplicate name")
	ErrTypeMismatch  = errors.New("type mismatch")
	ErrArityMismatch = errors.New("arity mismatch")
	ErrNotCallable   = errors.New("not callable")
)
