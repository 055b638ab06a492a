package skills

import "github.com/pkg/errors"

var (
	// ErrNotFound reports an operation referencing a skill that does not exist.
	ErrNotFound = errors.New("skill not found")
	// ErrAlreadyExists reports a create targeting an occupied skill id.
	ErrAlreadyExists = errors.New("skill already exists")
	// ErrInvalidID reports a skill id that does not match the id grammar.
	ErrInvalidID = errors.New("invalid skill id")
)
