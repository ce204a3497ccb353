package domain

import (
	"chat-relay/errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const MaxUsernameLength = 32

var validate = validator.New()

// ValidateUsername checks that a display name is non-empty, printable ASCII,
// at most MaxUsernameLength bytes and free of whitespace.
func ValidateUsername(name string) error {
	tag := fmt.Sprintf("required,max=%d,printascii", MaxUsernameLength)
	if err := validate.Var(name, tag); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidUsername, err)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace", errors.ErrInvalidUsername, name)
	}
	return nil
}
