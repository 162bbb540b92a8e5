package core

import (
	"strings"
	"time"
)

// timeLayout is the wire format for all timestamps: UTC, millisecond
// precision, e.g. "2024-01-02T15:04:05.006Z".
const timeLayout = "2006-01-02T15:04:05.000Z"

// Timestamp marshals to and from the judge's canonical wire format instead
// of RFC3339Nano, matching the format every persisted snapshot uses.
type Timestamp time.Time

// Now returns the current UTC time truncated to the wire format's
// millisecond precision, so a timestamp survives a JSON round trip intact.
func Now() Timestamp {
	return Timestamp(time.Now().UTC().Truncate(time.Millisecond))
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) Before(o Timestamp) bool {
	return time.Time(t).Before(time.Time(o))
}

func (t Timestamp) After(o Timestamp) bool {
	return time.Time(t).After(time.Time(o))
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	s := time.Time(t).UTC().Format(timeLayout)
	return []byte(`"` + s + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTimestamp parses s in the canonical wire format, tolerating
// RFC3339Nano as a fallback. Used both by UnmarshalJSON and by the HTTP
// surface when parsing the `from`/`to` query parameters of GET /jobs.
func ParseTimestamp(s string) (Timestamp, error) {
	parsed, err := time.Parse(timeLayout, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return Timestamp{}, err
		}
	}
	return Timestamp(parsed.UTC()), nil
}
