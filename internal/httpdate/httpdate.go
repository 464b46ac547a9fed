// Package httpdate implements HTTP-date handling as of RFC 9110, section 5.6.7:
// IMF-fixdate is emitted, and all the three accepted formats are recognized on parse.
package httpdate

import (
	"errors"
	"time"
)

const imfFixdate = "Mon, 02 Jan 2006 15:04:05 GMT"

var parseLayouts = []string{
	imfFixdate,
	"Monday, 02-Jan-06 15:04:05 GMT", // obsolete RFC 850
	time.ANSIC,                       // obsolete asctime()
}

var ErrBadDate = errors.New("malformed HTTP date")

// Format renders the timestamp as an IMF-fixdate. Sub-second precision is lost, as
// the format simply cannot carry it.
func Format(t time.Time) string {
	return t.UTC().Format(imfFixdate)
}

// Parse recognizes any of the three accepted HTTP date formats.
func Parse(raw string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrBadDate
}

// Truncate drops everything beyond the precision an HTTP date can carry.
func Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
