package validator

import (
	"errors"
	"regexp"
)

// Identifier validation errors
var (
	ErrIdentifierEmpty   = errors.New("identifier cannot be empty")
	ErrIdentifierTooLong = errors.New("identifier is too long")
	ErrInvalidIdentifier = errors.New("identifier must start with a letter or underscore and contain only lowercase letters, digits and underscores")
)

// MaxIdentifierLength matches PostgreSQL's NAMEDATALEN-1.
const MaxIdentifierLength = 63

var identifierRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateIdentifier checks a table, column or channel name before it is
// interpolated into SQL. Quoting still happens at the call site.
func ValidateIdentifier(name string) error {
	if name == "" {
		return ErrIdentifierEmpty
	}
	if len(name) > MaxIdentifierLength {
		return ErrIdentifierTooLong
	}
	if !identifierRegex.MatchString(name) {
		return ErrInvalidIdentifier
	}
	return nil
}

// ValidateIdentifiers validates every name and returns the first failure.
func ValidateIdentifiers(names ...string) error {
	for _, name := range names {
		if err := ValidateIdentifier(name); err != nil {
			return err
		}
	}
	return nil
}
