package types

import "time"

// Timestamp is a wire-safe representation of a point in time.
// Uses milliseconds since Unix epoch alongside an RFC 3339 rendering,
// ensuring deterministic serialization across languages.
type Timestamp struct {
	UnixTimestampMs int64  `json:"unix_timestamp_ms" cramberry:"1"`
	DateTime        string `json:"date_time" cramberry:"2"`
}

// TimeToTimestamp converts a time.Time to a Timestamp, truncated to
// millisecond precision.
func TimeToTimestamp(t time.Time) Timestamp {
	ms := t.UnixMilli()
	return Timestamp{
		UnixTimestampMs: ms,
		DateTime:        time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// ToTime converts a Timestamp to a time.Time (UTC).
func (ts Timestamp) ToTime() time.Time {
	return time.UnixMilli(ts.UnixTimestampMs).UTC()
}
