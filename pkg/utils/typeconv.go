package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// TimestampLayout renders UTC-aware instants with an explicit offset.
const TimestampLayout = "2006-01-02 15:04:05.999999-07:00"

// FormatValue converts a table cell to its CSV text form.
// nil becomes the empty string.
func FormatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case time.Time:
		return v.Format(TimestampLayout)
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// EpochMillisToUTC converts an epoch-milliseconds value into a UTC instant.
func EpochMillisToUTC(val interface{}) (time.Time, error) {
	ms, err := ConvertToInt64(val)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// ConvertToInt64 accepts integer-valued numbers in their decoded forms.
func ConvertToInt64(val interface{}) (int64, error) {
	switch v := val.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("cannot convert %v to integer", v)
		}
		return int64(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to integer: %w", v.String(), err)
		}
		return ConvertToInt64(f)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to integer", val)
	}
}
