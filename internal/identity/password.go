package identity

import (
	"unicode"
)

const (
	minPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

// Policy failure details returned to clients.
const (
	MsgPasswordTooShort       = "Passwords must be at least 6 characters."
	MsgPasswordTooLong        = "Passwords must be at most 72 bytes."
	MsgPasswordNeedsSymbol    = "Passwords must have at least one non alphanumeric character."
	MsgPasswordNeedsDigit     = "Passwords must have at least one digit ('0'-'9')."
	MsgPasswordNeedsLowercase = "Passwords must have at least one lowercase ('a'-'z')."
	MsgPasswordNeedsUppercase = "Passwords must have at least one uppercase ('A'-'Z')."
)

// CheckPasswordPolicy returns every rule the password breaks, or nil.
func CheckPasswordPolicy(password string) []string {
	var details []string

	if len([]rune(password)) < minPasswordLength {
		details = append(details, MsgPasswordTooShort)
	}
	if len(password) > maxPasswordBytes {
		details = append(details, MsgPasswordTooLong)
	}

	var digit, lower, upper, symbol bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			symbol = true
		}
	}

	if !symbol {
		details = append(details, MsgPasswordNeedsSymbol)
	}
	if !digit {
		details = append(details, MsgPasswordNeedsDigit)
	}
	if !lower {
		details = append(details, MsgPasswordNeedsLowercase)
	}
	if !upper {
		details = append(details, MsgPasswordNeedsUppercase)
	}

	return details
}
