// file: pkg/diskimg/timestamp.go

package diskimg

import (
	"fmt"
	"time"
)

const (
	timestampBaseYear = 1977
	timestampMaxYear  = 15
)

// Timestamp is the packed 3-byte OASIS date and time.
//
//	byte 0: month(4) day[4:1]
//	byte 1: day[0] year(4) hour[4:2]
//	byte 2: hour[1:0] minute(6)
type Timestamp [3]byte

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Components unpacks the timestamp, clamping every field to its valid range
func (ts Timestamp) Components() (year, month, day, hour, minute int) {
	month = clamp(int(ts[0]>>4), 1, 12)
	day = clamp(int(ts[0]&0x0F)<<1|int(ts[1]>>7), 1, 31)
	year = timestampBaseYear + int(ts[1]>>3&0x0F)
	hour = clamp(int(ts[1]&0x07)<<2|int(ts[2]>>6), 0, 23)
	minute = clamp(int(ts[2]&0x3F), 0, 59)
	return
}

// Time returns the timestamp as a local time
func (ts Timestamp) Time() time.Time {
	year, month, day, hour, minute := ts.Components()
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)
}

// EncodeTimestamp packs t, clamping the year to 1977-1992
func EncodeTimestamp(t time.Time) Timestamp {
	year := clamp(t.Year()-timestampBaseYear, 0, timestampMaxYear)
	month := clamp(int(t.Month()), 1, 12)
	day := clamp(t.Day(), 1, 31)
	hour := clamp(t.Hour(), 0, 23)
	minute := clamp(t.Minute(), 0, 59)

	return Timestamp{
		byte(month<<4 | day>>1&0x0F),
		byte((day&1)<<7 | year<<3 | hour>>2&0x07),
		byte((hour&3)<<6 | minute&0x3F),
	}
}

// String formats the timestamp as MM/DD/YY HH:MM
func (ts Timestamp) String() string {
	year, month, day, hour, minute := ts.Components()
	return fmt.Sprintf("%02d/%02d/%02d %02d:%02d", month, day, year%100, hour, minute)
}
