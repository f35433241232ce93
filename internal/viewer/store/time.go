package store

import "fmt"

// Timeline names an axis data is indexed on.
type Timeline string

const (
	// TimelineLogTime is wall-clock nanoseconds.
	TimelineLogTime Timeline = "log_time"
	// TimelineFrame is a frame sequence number.
	TimelineFrame Timeline = "frame_nr"
)

// TimeInt is a point on a timeline.
type TimeInt int64

// LatestAtQuery asks for the most recent value at or before At on
// Timeline.
type LatestAtQuery struct {
	Timeline Timeline
	At       TimeInt
}

// NewLatestAtQuery returns a LatestAtQuery.
func NewLatestAtQuery(timeline Timeline, at TimeInt) LatestAtQuery {
	return LatestAtQuery{Timeline: timeline, At: at}
}

func (q LatestAtQuery) String() string {
	return fmt.Sprintf("latest-at %s=%d", q.Timeline, q.At)
}
