package media

import (
	"strconv"
	"strings"
	"time"
)

// ParseProgressLine extracts the elapsed encode time from one key=value line
// of ffmpeg -progress output. Both out_time_us and out_time_ms carry
// microseconds. Every other line, including malformed or partial ones, is
// skipped.
func ParseProgressLine(line string) (time.Duration, bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return 0, false
	}
	switch strings.TrimSpace(key) {
	case "out_time_us", "out_time_ms":
	default:
		return 0, false
	}
	micros, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || micros < 0 {
		return 0, false
	}
	return time.Duration(micros) * time.Microsecond, true
}

// Band maps elapsed encode time into the percentage range reserved for the
// encode phase. The remainder of the scale covers setup and teardown.
type Band struct {
	Floor   int
	Ceiling int
}

// Map converts an elapsed time against a total duration (seconds) into a
// percentage clamped to the band. A non-positive total means the duration is
// unknown and progress parks at the floor.
func (b Band) Map(elapsed time.Duration, totalSeconds float64) int {
	if totalSeconds <= 0 {
		return b.Floor
	}
	span := b.Ceiling - b.Floor
	percent := b.Floor + int(elapsed.Seconds()/totalSeconds*float64(span))
	if percent < b.Floor {
		return b.Floor
	}
	if percent > b.Ceiling {
		return b.Ceiling
	}
	return percent
}
