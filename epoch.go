package mp4

import "time"

// epochDelta is the number of seconds between 1904-01-01 and 1970-01-01:
// 66 years plus 17 leap days.
const epochDelta = (66*365 + 17) * 24 * 3600

// TimeLayout renders MP4 timestamps in summaries.
const TimeLayout = "2006-01-02 T 15:04:05 .000Z"

// MP4Time converts seconds since 1904-01-01 UTC to a time.Time.
func MP4Time(secs int64) time.Time {
	return time.Unix(secs-epochDelta, 0).UTC()
}

// FormatMP4Time formats an MP4 timestamp with TimeLayout.
func FormatMP4Time(secs int64) string {
	return MP4Time(secs).Format(TimeLayout)
}
