package core

import "unicode"

// PasswordPolicy is the client-side sign-up gate: it only enables or
// disables submission, the backend stays the real enforcer.
type PasswordPolicy struct {
	LongEnough   bool
	HasUppercase bool
	HasDigit     bool
}

// CheckPassword evaluates the sign-up password rules: minimum length 8,
// at least one uppercase letter, at least one digit.
func CheckPassword(password string) PasswordPolicy {
	p := PasswordPolicy{LongEnough: len(password) >= 8}
	for _, r := range password {
		if unicode.IsUpper(r) {
			p.HasUppercase = true
		}
		if unicode.IsDigit(r) {
			p.HasDigit = true
		}
	}
	return p
}

func (p PasswordPolicy) Valid() bool {
	return p.LongEnough && p.HasUppercase && p.HasDigit
}

// Message returns the first unmet rule, empty when the policy passes.
func (p PasswordPolicy) Message() string {
	switch {
	case !p.LongEnough:
		return "Password must be at least 8 characters long."
	case !p.HasUppercase:
		return "Password must include an uppercase letter."
	case !p.HasDigit:
		return "Password must include a number."
	default:
		return ""
	}
}
