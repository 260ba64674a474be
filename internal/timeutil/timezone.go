package timeutil

import (
	"time"

	// Embedded tz database so venue timezones resolve on hosts without
	// a system zoneinfo directory.
	_ "time/tzdata"
)

// ValidTimezone reports whether tz names a location in the tz database.
// Venue timezones are stored as IANA names (America/New_York, Asia/Tokyo)
// and resolved when reports are rendered, so bad names are rejected at
// write time.
func ValidTimezone(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}
