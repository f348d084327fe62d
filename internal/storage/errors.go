package storage

import "github.com/pkg/errors"

var (
	// ErrKeyNotFound means the operation requires an existing key
	ErrKeyNotFound = errors.New("no such key")
	// ErrTypeMismatch means the key holds a value of another type
	ErrTypeMismatch = errors.New("operation against a key holding the wrong kind of value")
	// ErrNotAnInteger means a stored or supplied value is not a base-10 64-bit integer
	ErrNotAnInteger = errors.New("value is not an integer or out of range")
	// ErrNotAFloat means a stored or supplied value is not a valid float
	ErrNotAFloat = errors.New("value is not a valid float")
	// ErrIndexOutOfRange is returned by explicit list index operations only
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidArgument covers malformed ranges, cursors, counts and overflows
	ErrInvalidArgument = errors.New("invalid argument")
)

func errInvalid(msg string) error {
	return errors.Wrap(ErrInvalidArgument, msg)
}
