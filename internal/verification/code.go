package verification

import (
	"math/rand/v2"
	"strconv"
)

const (
	// CodeLength is the number of digits in an issued code.
	CodeLength = 6

	codeMin  = 100000
	codeSpan = 900000
)

// CodeGenerator returns the code for a new issuance.
type CodeGenerator func() string

// NewCode returns a uniformly random code in [100000, 999999], so the leading digit is never zero.
func NewCode() string {
	return strconv.Itoa(codeMin + rand.IntN(codeSpan))
}

// ValidCode reports whether s has the shape of an issued code.
func ValidCode(s string) bool {
	if len(s) != CodeLength || s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
