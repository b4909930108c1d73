package timeline

import (
	"strconv"
	"strings"
)

// Recency ordering key: minutes elapsed since the item happened. Lower is
// more recent. Items whose labels cannot be parsed sort after everything
// that could be.
const unparsedRecency = int64(1) << 40

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
	minutesPerWeek = 7 * minutesPerDay
)

// parseRelativeLabel converts a human relative-time label ("2 min. ago",
// "5 hr. ago", "7 days ago", "3 weeks ago") into minutes-ago. Feeds from
// collaborator services carry pre-rendered labels instead of timestamps, so
// ordering has to recover the recency from the text.
func parseRelativeLabel(label string) int64 {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(label)))
	if len(fields) < 2 {
		return unparsedRecency
	}

	amount, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || amount < 0 {
		return unparsedRecency
	}

	unit := strings.TrimRight(fields[1], ".s")
	switch unit {
	case "m", "min", "minute":
		return amount
	case "h", "hr", "hour":
		return amount * minutesPerHour
	case "d", "day":
		return amount * minutesPerDay
	case "w", "week":
		return amount * minutesPerWeek
	default:
		return unparsedRecency
	}
}
