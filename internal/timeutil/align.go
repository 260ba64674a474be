// Package timeutil holds the bucket alignment arithmetic and timezone
// checks shared by the aggregation and store layers.
package timeutil

// Bucket alignment helpers. KPI buckets are calendar-aligned: a bucket of
// N minutes starts on a multiple of N minutes from the Unix epoch. All
// arguments and results are epoch milliseconds.

// BucketWidthMs returns the width of a bucket in milliseconds.
func BucketWidthMs(bucketMinutes int) int64 {
	return int64(bucketMinutes) * 60 * 1000
}

// AlignDownMs floors ts to the start of its bucket.
func AlignDownMs(ts int64, bucketMinutes int) int64 {
	w := BucketWidthMs(bucketMinutes)
	if w <= 0 {
		return ts
	}
	aligned := (ts / w) * w
	if ts < 0 && ts%w != 0 {
		aligned -= w
	}
	return aligned
}

// AlignUpMs ceils ts to the next bucket boundary. A ts already on a
// boundary is returned unchanged.
func AlignUpMs(ts int64, bucketMinutes int) int64 {
	w := BucketWidthMs(bucketMinutes)
	if w <= 0 {
		return ts
	}
	aligned := AlignDownMs(ts, bucketMinutes)
	if aligned != ts {
		aligned += w
	}
	return aligned
}
