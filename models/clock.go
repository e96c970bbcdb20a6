package models

import "time"

// Now is the clock for every stored timestamp. SQLite keeps times as text
// with their offset, so range queries only order correctly when all rows and
// bound values share one zone.
func Now() time.Time {
	return time.Now().UTC()
}

// utc converts each non-nil, non-zero time in place
func utc(ts ...*time.Time) {
	for _, t := range ts {
		if t != nil && !t.IsZero() {
			*t = t.UTC()
		}
	}
}
