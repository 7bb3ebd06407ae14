package activity

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Timestamp is the backend's seconds/nanos timestamp object.
type Timestamp struct {
	Seconds int64 `json:"seconds" msgpack:"seconds"`
	Nanos   int32 `json:"nanoseconds" msgpack:"nanoseconds"`
}

func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

func (ts Timestamp) Millis() int64 {
	return ts.Seconds*1000 + int64(ts.Nanos)/int64(time.Millisecond)
}

// Numbers below this are epoch seconds, at or above it epoch milliseconds.
const secondsCutoff = 1e11

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeMillis converts any supported createdAt representation to
// milliseconds since the epoch. Missing or unparseable values yield 0, which
// sorts as the oldest possible instant.
func NormalizeMillis(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case time.Time:
		if x.IsZero() {
			return 0
		}
		return positive(x.UnixMilli())
	case *time.Time:
		if x == nil {
			return 0
		}
		return NormalizeMillis(*x)
	case Timestamp:
		return positive(x.Millis())
	case *Timestamp:
		if x == nil {
			return 0
		}
		return positive(x.Millis())
	case map[string]any:
		return fromObject(x)
	case int:
		return fromNumber(float64(x))
	case int32:
		return fromNumber(float64(x))
	case int64:
		return fromNumber(float64(x))
	case uint:
		return fromNumber(float64(x))
	case uint32:
		return fromNumber(float64(x))
	case uint64:
		return fromNumber(float64(x))
	case float32:
		return fromNumber(float64(x))
	case float64:
		return fromNumber(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		return fromNumber(f)
	case string:
		return fromString(x)
	}
	return 0
}

func positive(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	return ms
}

func fromNumber(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f < secondsCutoff {
		return int64(f * 1000)
	}
	return int64(f)
}

func fromString(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return positive(t.UnixMilli())
		}
	}
	return 0
}

func fromObject(m map[string]any) int64 {
	secs, ok := firstNumber(m, "seconds", "_seconds")
	if !ok {
		return 0
	}
	nanos, _ := firstNumber(m, "nanoseconds", "_nanoseconds", "nanos")
	return positive(int64(secs)*1000 + int64(nanos)/int64(time.Millisecond))
}

func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case float64:
			return n, true
		case int64:
			return float64(n), true
		case int:
			return float64(n), true
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
