package task

import "fmt"

// Status is the lifecycle state of a Task.
type Status int

const (
	StatusCreated Status = iota
	StatusWaitingForActivation
	StatusWaitingToRun
	StatusRunning
	StatusWaitingForChildrenToComplete
	StatusRanToCompletion
	StatusCanceled
	StatusFaulted
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusWaitingForActivation:
		return "waitingForActivation"
	case StatusWaitingToRun:
		return "waitingToRun"
	case StatusRunning:
		return "running"
	case StatusWaitingForChildrenToComplete:
		return "waitingForChildrenToComplete"
	case StatusRanToCompletion:
		return "ranToCompletion"
	case StatusCanceled:
		return "canceled"
	case StatusFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Terminal reports whether s is one of the three settled states.
func (s Status) Terminal() bool {
	return s == StatusRanToCompletion || s == StatusCanceled || s == StatusFaulted
}
