package domain

import (
	"fmt"
	"time"
)

// timestampLayout is ISO-8601 UTC with microsecond resolution and a
// trailing "Z", matching the manifests produced by this package and the
// change feed.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// Timestamp is a UTC instant truncated to microsecond resolution.
type Timestamp struct {
	t time.Time
}

// NewTimestamp truncates t to UTC microsecond resolution.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t.UTC().Truncate(time.Microsecond)}
}

// Now returns the current instant, truncated to microsecond resolution.
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

// Time returns the underlying time.Time in UTC.
func (ts Timestamp) Time() time.Time { return ts.t }

// IsZero reports whether ts is the zero timestamp.
func (ts Timestamp) IsZero() bool { return ts.t.IsZero() }

// Before reports whether ts occurs before other.
func (ts Timestamp) Before(other Timestamp) bool { return ts.t.Before(other.t) }

// After reports whether ts occurs after other.
func (ts Timestamp) After(other Timestamp) bool { return ts.t.After(other.t) }

// String formats ts as ISO-8601 with a trailing "Z".
func (ts Timestamp) String() string {
	return ts.t.Format(timestampLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp in any of the common
// resolutions accepted by the original kernel: date-only (no suffix), or
// minute, second or fractional-second resolution with a trailing "Z" or an
// RFC 3339 zone offset. A time of day without a zone is rejected.
func ParseTimestamp(s string) (Timestamp, error) {
	layouts := []string{
		timestampLayout,
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04Z",
		"2006-01-02",
		time.RFC3339Nano,
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimestamp(t), nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w: invalid timestamp %q", ErrValidation, s)
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ts.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("%w: invalid timestamp literal", ErrValidation)
	}
	parsed, err := ParseTimestamp(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
