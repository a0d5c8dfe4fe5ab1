package modeltimer

// Segment tags the kind of interval the main countdown is timing.
type Segment int

const (
	// SegmentPose is the primary timed interval.
	SegmentPose Segment = iota
	// SegmentBreak is the rest interval that follows a pose.
	SegmentBreak
)

// String returns the segment name used in logs and on the wire.
func (s Segment) String() string {
	if s == SegmentBreak {
		return "break"
	}

	return "pose"
}

// ParseSegment converts a segment name back into a Segment.
func ParseSegment(s string) (Segment, bool) {
	switch s {
	case "pose":
		return SegmentPose, true
	case "break":
		return SegmentBreak, true
	default:
		return SegmentPose, false
	}
}

// next returns the segment that follows s.
func (s Segment) next() Segment {
	if s == SegmentPose {
		return SegmentBreak
	}

	return SegmentPose
}
