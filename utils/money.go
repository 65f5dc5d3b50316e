package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatPrice formats an integer amount in cents as a string like "$1,250.00".
func FormatPrice(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}

	whole := cents / 100
	frac := cents % 100

	s := strconv.FormatInt(whole, 10)

	var b strings.Builder
	// Pre-allocate: digits + separators + "$" + ".00"
	b.Grow(len(s) + len(s)/3 + 5)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	// Insert thousands separators from the left.
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}

	b.WriteString(fmt.Sprintf(".%02d", frac))
	return b.String()
}
