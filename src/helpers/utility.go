package helpers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Add this function to generate UUIDs
func GenerateUUID() string {
	return uuid.New().String()
}

// FormatTimestamp renders a stored timestamp for display. Zero times render
// as an empty string instead of the zero-value date.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// ValueToString converts a raw field value to its display form.
func ValueToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return FormatTimestamp(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
