package resultset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wasmdb/wasmexec/plan"
)

// float32MaxDigits10 and float64MaxDigits10 mirror each type's
// std::numeric_limits<T>::max_digits10 minus one: the number of significant
// digits print mode renders with 'g' formatting, trailing zeros dropped.
const (
	float32MaxDigits10 = 9 - 1
	float64MaxDigits10 = 17 - 1
)

// FormatRow renders one row's values in print-mode order, comma-separated
// with no trailing separator. The caller appends the row's own newline.
func FormatRow(row []plan.Value) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = FormatValue(v)
	}
	return strings.Join(parts, ",")
}

// FormatValue renders a single value per print mode's per-type rules: TRUE
// or FALSE for booleans, raw decimal for integers, decimal rounded to the
// type's significant-digit limit for floats, unescaped
// double-quoted text for strings, sign-aware zero-padded YYYY-MM-DD for
// dates, broken-down UTC time for datetimes, and NULL whenever the value's
// Null flag is set regardless of its declared type.
func FormatValue(v plan.Value) string {
	if v.Null {
		return "NULL"
	}
	switch v.Type {
	case plan.TypeBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case plan.TypeI8, plan.TypeI16, plan.TypeI32, plan.TypeI64:
		return strconv.FormatInt(v.Int, 10)
	case plan.TypeF32:
		return strconv.FormatFloat(float64(v.F32), 'g', float32MaxDigits10, 32)
	case plan.TypeF64:
		return strconv.FormatFloat(v.F64, 'g', float64MaxDigits10, 64)
	case plan.TypeString:
		return `"` + v.Str + `"`
	case plan.TypeDate:
		return formatDate(int32(v.Int))
	case plan.TypeDateTime:
		return formatDateTime(v.Int)
	default:
		return strconv.FormatInt(v.Int, 10)
	}
}

// formatDate unpacks year<<9 | month<<5 | day, zero-padding the year to four
// digits and carrying the sign separately so a negative (BCE) year still
// reads YYYY-MM-DD rather than a raw negative number.
func formatDate(packed int32) string {
	day := packed & 0x1F
	month := (packed >> 5) & 0xF
	year := packed >> 9

	sign := ""
	if year < 0 {
		sign = "-"
		year = -year
	}
	return fmt.Sprintf("%s%04d-%02d-%02d", sign, year, month, day)
}

// formatDateTime renders Unix-seconds as broken-down UTC time.
func formatDateTime(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).UTC().Format("2006-01-02 15:04:05")
}
