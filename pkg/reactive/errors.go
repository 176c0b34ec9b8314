package reactive

import (
	"errors"
	"fmt"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// ErrReadOnly is returned by Set and Update on computed nodes and on bridges
// built without a setter.
var ErrReadOnly = errors.New("reactive: read-only value")

// ErrInvalidShape is returned when a specialized cell is constructed with a
// value its equality predicate cannot compare.
var ErrInvalidShape = errors.New("reactive: invalid value shape")

// ErrEqualType is returned when WithEqual receives a predicate for a different
// value type than the cell being constructed.
var ErrEqualType = errors.New("reactive: equality predicate type mismatch")

// ErrBatchUnderflow is returned by EndBatch when no batch is open.
var ErrBatchUnderflow = errors.New("reactive: EndBatch without StartBatch")

// ErrLoopClosed is returned when work is posted to a closed Loop.
var ErrLoopClosed = errors.New("reactive: loop closed")

// PanicError carries a panic recovered from work that runs off the caller's
// stack, such as the operation passed to Loop.BatchAsync.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("reactive: panic: %v", e.Value)
}

func readOnlyError(id uint64, name string, kind Kind) error {
	return rerrors.New("R001").
		WithDetailf("%s %s cannot be written", kind, describe(id, name)).
		Wrap(ErrReadOnly)
}

func shapeError(format string, args ...any) error {
	return rerrors.New("R050").
		WithDetailf(format, args...).
		Wrap(ErrInvalidShape)
}

func equalTypeError(want string, got any) error {
	return rerrors.New("R051").
		WithDetailf("want func(a, b %s) bool, got %T", want, got).
		Wrap(ErrEqualType)
}

func describe(id uint64, name string) string {
	if name == "" {
		return fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("#%d (%s)", id, name)
}
