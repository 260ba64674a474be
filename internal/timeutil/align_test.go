package timeutil

import "testing"

func TestBucketWidthMs(t *testing.T) {
	if got := BucketWidthMs(15); got != 900000 {
		t.Errorf("BucketWidthMs(15) = %d, want 900000", got)
	}
	if got := BucketWidthMs(60); got != 3600000 {
		t.Errorf("BucketWidthMs(60) = %d, want 3600000", got)
	}
}

func TestAlignDownMs(t *testing.T) {
	tests := []struct {
		name          string
		ts            int64
		bucketMinutes int
		want          int64
	}{
		{"on boundary", 1700000100000, 15, 1700000100000},
		{"mid bucket", 1700000100000 + 437000, 15, 1700000100000},
		{"one ms before next boundary", 1700000100000 + 899999, 15, 1700000100000},
		{"hour bucket", 1699999200000 + 1800000, 60, 1699999200000},
		{"zero", 0, 15, 0},
	}
	for _, tt := range tests {
		if got := AlignDownMs(tt.ts, tt.bucketMinutes); got != tt.want {
			t.Errorf("%s: AlignDownMs(%d, %d) = %d, want %d", tt.name, tt.ts, tt.bucketMinutes, got, tt.want)
		}
	}
}

func TestAlignUpMs(t *testing.T) {
	tests := []struct {
		name          string
		ts            int64
		bucketMinutes int
		want          int64
	}{
		{"on boundary stays", 1700000100000, 15, 1700000100000},
		{"mid bucket rounds up", 1700000100000 + 1, 15, 1700000100000 + 900000},
		{"just under boundary", 1700000100000 + 899999, 15, 1700000100000 + 900000},
	}
	for _, tt := range tests {
		if got := AlignUpMs(tt.ts, tt.bucketMinutes); got != tt.want {
			t.Errorf("%s: AlignUpMs(%d, %d) = %d, want %d", tt.name, tt.ts, tt.bucketMinutes, got, tt.want)
		}
	}
}

func TestAlignedRangeCoversRawRange(t *testing.T) {
	start := int64(1700000100000 + 123456)
	end := int64(1700000100000 + 2500000)

	alignedStart := AlignDownMs(start, 15)
	alignedEnd := AlignUpMs(end, 15)

	if alignedStart > start {
		t.Errorf("aligned start %d is after raw start %d", alignedStart, start)
	}
	if alignedEnd < end {
		t.Errorf("aligned end %d is before raw end %d", alignedEnd, end)
	}
	w := BucketWidthMs(15)
	if alignedStart%w != 0 || alignedEnd%w != 0 {
		t.Errorf("aligned bounds %d..%d are not on %dms boundaries", alignedStart, alignedEnd, w)
	}
}
