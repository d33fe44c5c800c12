package types

// Status is the lifecycle stage of a match instance.
type Status uint8

const (
	StatusNone Status = iota
	StatusAwaitingPlayers
	StatusWarmupCountdown
	StatusInProgress
	StatusWrapUp
	StatusFinished
)

var statusNames = [...]string{"none", "awaiting_players", "warmup_countdown", "in_progress", "wrap_up", "finished"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// IsTerminal reports whether no further transition can happen.
func (s Status) IsTerminal() bool {
	return s == StatusFinished
}
