package value

import (
	"fmt"
	"math"
	"strconv"
)

// Stringify returns the plain string form of v. Scalars are unquoted (this is
// the text search matches against); composites are compact JSON.
func Stringify(v Value) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return FormatNumber(v.n)
	case KindString:
		return v.s
	case KindSequence, KindMapping:
		data, err := EncodeJSON(v, "")
		if err != nil {
			return fmt.Sprint(ToNative(v))
		}
		return string(data)
	default:
		return fmt.Sprint(v.opaque)
	}
}

// FormatNumber renders n without trailing zeros and without an exponent for
// ordinary magnitudes, so 1700000000 stays 1700000000 and 1.50 becomes 1.5.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	abs := math.Abs(n)
	if n == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// IsInteger reports whether n has no fractional part.
func IsInteger(n float64) bool {
	return !math.IsInf(n, 0) && !math.IsNaN(n) && n == math.Trunc(n)
}
