package domain

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseLeadingInt converts form text the way the page's parseInt did: leading
// whitespace and an optional sign, then the longest run of decimal digits, or
// of hex digits after a "0x"/"0X" prefix. Input without digits yields 0.
// Values beyond the int range saturate. exact is false whenever anything was
// discarded, defaulted, or clamped, so callers can flag the lossy conversion.
func ParseLeadingInt(raw string) (value int, exact bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	base, isDigit := 10, isDecimal
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit = 16, isHex
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}

	exact = strings.TrimRightFunc(s[end:], unicode.IsSpace) == ""
	n, err := strconv.ParseInt(s[:end], base, strconv.IntSize)
	if err != nil {
		// Only a range error is possible here.
		exact = false
		n = math.MaxInt
	}
	if neg {
		n = -n
	}
	return int(n), exact
}

func isDecimal(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
