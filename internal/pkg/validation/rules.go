// Package validation holds the account provisioning rules shared by the CLI and the services.
package validation

import (
	"regexp"
	"unicode/utf8"
)

// Provisioning limits
var (
	// LoginNamePattern allows printable characters without whitespace
	LoginNamePattern = regexp.MustCompile(`^\S+$`)

	LoginNameMaxLength = 64
	FullNameMaxLength  = 200

	// bcrypt ignores anything past 72 bytes
	PasswordMinBytes = 4
	PasswordMaxBytes = 72
)

// StringRule checks one string value
type StringRule struct {
	Value    string
	MinRunes int
	MaxRunes int
	MinBytes int
	MaxBytes int
	Pattern  *regexp.Regexp
}

// String starts a rule for value
func String(value string) *StringRule {
	return &StringRule{Value: value}
}

// Runes bounds the length in characters; zero means unbounded
func (r *StringRule) Runes(min, max int) *StringRule {
	r.MinRunes, r.MaxRunes = min, max
	return r
}

// Bytes bounds the encoded length; zero means unbounded
func (r *StringRule) Bytes(min, max int) *StringRule {
	r.MinBytes, r.MaxBytes = min, max
	return r
}

// Matching requires the value to match pattern
func (r *StringRule) Matching(pattern *regexp.Regexp) *StringRule {
	r.Pattern = pattern
	return r
}

// Valid reports whether the value satisfies every bound
func (r *StringRule) Valid() bool {
	n := utf8.RuneCountInString(r.Value)
	if (r.MinRunes > 0 && n < r.MinRunes) || (r.MaxRunes > 0 && n > r.MaxRunes) {
		return false
	}
	if (r.MinBytes > 0 && len(r.Value) < r.MinBytes) || (r.MaxBytes > 0 && len(r.Value) > r.MaxBytes) {
		return false
	}
	if r.Pattern != nil && !r.Pattern.MatchString(r.Value) {
		return false
	}
	return true
}

// ValidLoginName reports whether name can be used as a login name
func ValidLoginName(name string) bool {
	return String(name).Runes(1, LoginNameMaxLength).Matching(LoginNamePattern).Valid()
}

// ValidFullName reports whether name can be shown as a person's name
func ValidFullName(name string) bool {
	return String(name).Runes(1, FullNameMaxLength).Valid()
}

// ValidPassword reports whether secret is acceptable as a stored credential
func ValidPassword(secret string) bool {
	return String(secret).Bytes(PasswordMinBytes, PasswordMaxBytes).Valid()
}
