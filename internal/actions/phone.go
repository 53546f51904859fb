package actions

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// NormalizePhone formats a valid number as E.164 for region. Anything
// libphonenumber rejects is kept with separators stripped, so two spellings
// of the same local number still compare equal.
func NormalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	p, err := libphonenumber.Parse(raw, region)
	if err == nil && libphonenumber.IsValidNumber(p) {
		return libphonenumber.Format(p, libphonenumber.E164)
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, raw)
}
