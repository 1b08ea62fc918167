// Package cpf validates Brazilian individual taxpayer numbers.
package cpf

import "strings"

// Normalize strips everything but digits.
func Normalize(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether value (formatted or not) is an 11 digit CPF with
// correct check digits. Repeated-digit sequences such as 111.111.111-11 are
// rejected.
func Valid(value string) bool {
	digits := Normalize(value)
	if len(digits) != 11 {
		return false
	}
	if strings.Count(digits, digits[:1]) == 11 {
		return false
	}
	return checkDigit(digits[:9]) == digits[9] && checkDigit(digits[:10]) == digits[10]
}

func checkDigit(prefix string) byte {
	weight := len(prefix) + 1
	sum := 0
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * (weight - i)
	}
	rest := 11 - sum%11
	if rest >= 10 {
		rest = 0
	}
	return byte('0' + rest)
}
