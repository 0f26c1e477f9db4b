package server

import "fmt"

// CaptureOutcome tells a resolved capture apart from a rejected one.
// Weakened is a resolved strike that left the defender in place.
type CaptureOutcome int

const (
	CaptureNone CaptureOutcome = iota
	CaptureClaimed
	CaptureReinforced
	CaptureWeakened
	CaptureTaken
)

func (c CaptureOutcome) Applied() bool {
	return c != CaptureNone
}

func (c CaptureOutcome) Name() string {
	switch c {
	case CaptureNone:
		return "NONE"
	case CaptureClaimed:
		return "CLAIMED"
	case CaptureReinforced:
		return "REINFORCED"
	case CaptureWeakened:
		return "WEAKENED"
	case CaptureTaken:
		return "TAKEN"
	default:
		return fmt.Sprintf("n/a:%d", c)
	}
}

func queueStatus(depth int) string {
	return fmt.Sprintf("Looking for players... (%d/%d)", depth, SeatsPerRoom)
}
