package render

import (
	"fmt"
	"strings"

	"github.com/TFMV/graphpad/analytics"
)

// Histogram draws degree buckets as horizontal bars, one line per bucket.
// The longest bar is barWidth characters; the rest scale to it.
func Histogram(buckets []analytics.Bucket, barWidth int) []byte {
	if len(buckets) == 0 {
		return []byte("(empty graph)\n")
	}
	if barWidth <= 0 {
		barWidth = 40
	}

	peak := 0
	for _, b := range buckets {
		peak = max(peak, b.Count)
	}

	var sb strings.Builder
	for i, b := range buckets {
		closing := ")"
		if i == len(buckets)-1 {
			closing = "]"
		}
		n := 0
		if peak > 0 {
			n = b.Count * barWidth / peak
		}
		if b.Count > 0 && n == 0 {
			n = 1
		}
		fmt.Fprintf(&sb, "[%6.2f, %6.2f%s %-*s %d\n", b.Start, b.End, closing, barWidth, strings.Repeat("#", n), b.Count)
	}
	return []byte(sb.String())
}
