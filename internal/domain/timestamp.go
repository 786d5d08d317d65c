package domain

import "time"

// TimestampLayout is fixed width so stored strings sort in time order.
// For UTC it renders the offset as "+00:00".
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// naiveLayouts are ISO 8601 forms without an offset; they are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts TimestampLayout and any RFC 3339 variant, including
// values written without fractional seconds. Values without an offset are
// taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if naive, nerr := time.ParseInLocation(layout, s, time.UTC); nerr == nil {
			return naive, nil
		}
	}
	return time.Time{}, err
}
