package threaddataset

import (
	"fmt"
	"time"
)

// Timestamp is a MeshCoP timestamp: 48 bits of seconds, 15 bits of 1/32768
// second ticks and the authoritative flag.
type Timestamp struct {
	Seconds       uint64
	Ticks         uint16
	Authoritative bool
}

const (
	maxSeconds = 1<<48 - 1
	maxTicks   = 1<<15 - 1
)

// TimestampAt returns the timestamp of t.
func TimestampAt(t time.Time, authoritative bool) Timestamp {
	ms := t.UnixMilli()
	return Timestamp{
		Seconds:       uint64(ms/1000) & maxSeconds,
		Ticks:         uint16((ms%1000)*32768/1000) & maxTicks,
		Authoritative: authoritative,
	}
}

// TimestampFromUint64 unpacks the wire form.
func TimestampFromUint64(v uint64) Timestamp {
	return Timestamp{
		Seconds:       v >> 16,
		Ticks:         uint16(v>>1) & maxTicks,
		Authoritative: v&1 != 0,
	}
}

// Uint64 packs the timestamp; out of range seconds and ticks are truncated.
func (ts Timestamp) Uint64() uint64 {
	v := (ts.Seconds&maxSeconds)<<16 | uint64(ts.Ticks&maxTicks)<<1
	if ts.Authoritative {
		v |= 1
	}
	return v
}

func (ts Timestamp) String() string {
	return fmt.Sprintf("Timestamp{seconds=%d, ticks=%d, authoritative=%t}", ts.Seconds, ts.Ticks, ts.Authoritative)
}
