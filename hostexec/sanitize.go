package hostexec

import (
	"strings"
)

// metacharacters is the fixed denylist of shell metacharacters stripped
// from externally supplied tokens. Commands are executed as argument
// vectors without a shell, so this is redundant defense: a sanitized
// value can never terminate, chain or substitute into the intended
// command even if it were handed to an interpreter.
const metacharacters = ";&|`$(){}[]\\"

// Sanitize removes every shell metacharacter from value. For inputs
// containing none of them the value is returned unchanged.
func Sanitize(value string) string {
	if !strings.ContainsAny(value, metacharacters) {
		return value
	}
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if strings.ContainsRune(metacharacters, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
