package eliasfano

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when a sequence with zero elements is requested.
	ErrEmpty = errors.New("eliasfano: empty sequence")
	// ErrEmptyUniverse is returned when the universe size is zero.
	ErrEmptyUniverse = errors.New("eliasfano: empty universe")
	// ErrUniverseOverflow is returned when max+1 does not fit in uint64.
	ErrUniverseOverflow = errors.New("eliasfano: universe overflows uint64")
	// ErrOutOfUniverse is returned when a pushed value is >= the universe size.
	ErrOutOfUniverse = errors.New("eliasfano: value out of universe")
	// ErrNotStrictlyIncreasing is returned when values are not pushed in strictly increasing order.
	ErrNotStrictlyIncreasing = errors.New("eliasfano: values not strictly increasing")
	// ErrTooMany is returned when more values are pushed than declared.
	ErrTooMany = errors.New("eliasfano: more values than declared")
	// ErrIncomplete is returned by Build when fewer values were pushed than declared.
	ErrIncomplete = errors.New("eliasfano: fewer values than declared")
	// ErrOutOfRange is returned by Select when k >= Len().
	ErrOutOfRange = errors.New("eliasfano: index out of range")
	// ErrCorrupt is returned when decoding malformed data.
	ErrCorrupt = errors.New("eliasfano: corrupt data")
)

// DuplicateError reports a repeated value in a sequence that must be strictly increasing.
type DuplicateError struct {
	Index int
	Value uint64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("eliasfano: duplicate value %d at index %d", e.Value, e.Index)
}

func (e *DuplicateError) Unwrap() error { return ErrNotStrictlyIncreasing }

// CheckStrictlyIncreasing verifies in one pass that ids are sorted and duplicate free.
// A repeated value yields a *DuplicateError.
func CheckStrictlyIncreasing(ids []uint64) error {
	for i := 1; i < len(ids); i++ {
		switch {
		case ids[i] == ids[i-1]:
			return &DuplicateError{Index: i, Value: ids[i]}
		case ids[i] < ids[i-1]:
			return fmt.Errorf("%w: %d at index %d follows %d", ErrNotStrictlyIncreasing, ids[i], i, ids[i-1])
		}
	}
	return nil
}
