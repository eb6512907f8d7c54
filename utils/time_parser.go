package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// maxTimerSeconds is the largest duration the persistence layer accepts for
// a punishment timer (32-bit signed seconds field).
const maxTimerSeconds = 2147483647

var hmRegex = regexp.MustCompile(
	`((?P<years>\d+)y)?((?P<months>\d+)M)?((?P<weeks>\d+)w)?((?P<days>\d+)d)?((?P<hours>\d+)h)?((?P<minutes>\d+)m)?((?P<seconds>\d+)s)?`)

var hmUnitSeconds = map[string]int64{
	"years":   31540000,
	"months":  2628000,
	"weeks":   604800,
	"days":    86400,
	"hours":   3600,
	"minutes": 60,
	"seconds": 1,
}

// HmToSeconds converts a compound duration string to seconds. For example,
// "1h15m" returns 4500. Unmatched components count as zero and the total is
// clamped to [0, 2147483647]. The regex only matches digits, so negative
// components cannot occur.
func HmToSeconds(hm string) int64 {
	match := hmRegex.FindStringSubmatch(hm)
	if match == nil {
		return 0
	}

	var total int64
	for i, name := range hmRegex.SubexpNames() {
		secs, ok := hmUnitSeconds[name]
		if !ok || match[i] == "" {
			continue
		}
		n, err := strconv.ParseInt(match[i], 10, 64)
		if err != nil {
			// value exceeds an int64; saturate
			return maxTimerSeconds
		}
		// saturate before multiplying so the product cannot wrap int64
		if n > maxTimerSeconds/secs {
			return maxTimerSeconds
		}
		total += n * secs
		if total > maxTimerSeconds {
			return maxTimerSeconds
		}
	}
	return total
}

// StripHm removes duration tokens like "1h15m" from a reason string, so the
// stored reason does not repeat the time specifier.
func StripHm(s string) string {
	return strings.TrimSpace(hmRegex.ReplaceAllString(s, ""))
}
