package store

import (
	"fmt"
	"time"
)

// GenerateBatchID returns a timestamp-derived batch identifier in the form
// YYYYMMDD_HHMMSS_ffffff. Microsecond precision keeps sequential
// single-writer saves collision-free, and lexical order matches creation
// order.
func GenerateBatchID(now time.Time) string {
	return fmt.Sprintf("%s_%06d", now.Format("20060102_150405"), now.Nanosecond()/1000)
}
