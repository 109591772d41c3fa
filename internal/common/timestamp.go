package common

import (
	"fmt"
	"time"
)

// isoTimestampLayout matches the "YYYY-MM-DDTHH:MM:SS.sssZ" form used on the
// wire, always in UTC.
const isoTimestampLayout = "2006-01-02T15:04:05.000Z"

// ParseTimestamp accepts an epoch-millis integer (int or int64), an
// epoch-seconds float64 (its fractional part carries sub-second
// precision), or an ISO-8601 string in the form "YYYY-MM-DDTHH:MM:SS.sssZ"
// (UTC). Anything else fails with ErrInvalidTimestamp.
func ParseTimestamp(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case int:
		return time.UnixMilli(int64(v)).UTC(), nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	case float64:
		wholeSeconds := int64(v)
		nanos := int64((v - float64(wholeSeconds)) * float64(time.Second))
		return time.Unix(wholeSeconds, nanos).UTC(), nil
	case string:
		t, err := time.Parse(isoTimestampLayout, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: timestamp %q: %v", ErrInvalidTimestamp, v, err)
		}
		return t.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: timestamp %v", ErrInvalidTimestamp, value)
	}
}
