package validators

import "github.com/donazulmira/moradores-backend/pkg/textutil"

// SanitizeString trims the input and caps it at maxLen runes.
func SanitizeString(input string, maxLen int) string {
	return textutil.Sanitize(input, maxLen)
}
