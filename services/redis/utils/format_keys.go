package redis_utils

import "fmt"

// FormatFeedChannel builds the pub/sub channel name for one table's change
// feed scoped to a meeting.
// Format: "feed:{table}:{meeting_id}"
func FormatFeedChannel(table string, meetingID string) string {
	return fmt.Sprintf("feed:%s:%s", table, meetingID)
}
