package models

import "time"

// ISOLayout matches the millisecond UTC form used in response envelopes.
const ISOLayout = "2006-01-02T15:04:05.000Z"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp returns the zero time when s matches none of the known layouts.
func ParseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

func (a ActivityRecord) Time() time.Time {
	return ParseTimestamp(a.Timestamp)
}
