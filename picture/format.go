package picture

import (
	"strconv"
	"strings"
)

// FormatDescriptorValue renders v with at most three decimals, a period as
// decimal separator, no grouping and no trailing zeros: 1.35354 -> "1.354",
// 1.9999 -> "2", 100 -> "100".
//
// strconv never consults the process locale.
func FormatDescriptorValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
